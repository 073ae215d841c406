package neo4j

import (
	"errors"
	"fmt"
	"strings"

	neo "github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// QuerySyntaxError carries the server's message verbatim; retrying the same
// query cannot fix it.
type QuerySyntaxError struct {
	Msg string
}

func (e *QuerySyntaxError) Error() string {
	return "query syntax error: " + e.Msg
}

// QueryTooComplexError rejects a query before it reaches the server.
type QueryTooComplexError struct {
	Length int
	Limit  int
}

func (e *QueryTooComplexError) Error() string {
	return fmt.Sprintf("query too complex: %d chars exceeds limit of %d", e.Length, e.Limit)
}

// classify decides whether an error from the driver is worth retrying.
// Syntax and other client errors are permanent; connection and transient
// server errors are not.
func classify(err error) (permanent bool) {
	if err == nil {
		return false
	}

	var neoErr *neo.Neo4jError
	if errors.As(err, &neoErr) {
		if strings.Contains(neoErr.Code, "SyntaxError") {
			return true
		}
		if strings.HasPrefix(neoErr.Code, "Neo.ClientError") {
			return true
		}
		return false
	}

	var syntaxErr *QuerySyntaxError
	if errors.As(err, &syntaxErr) {
		return true
	}
	var complexErr *QueryTooComplexError
	if errors.As(err, &complexErr) {
		return true
	}

	// Anything else (dial failures, resets, timeouts) is transient.
	return false
}

func isSyntaxError(err error) bool {
	var neoErr *neo.Neo4jError
	return errors.As(err, &neoErr) && strings.Contains(neoErr.Code, "SyntaxError")
}
