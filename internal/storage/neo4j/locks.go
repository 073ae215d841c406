package neo4j

import "sync"

// patientLocks serializes graph replaces per patient. Replaces for different
// patients never contend with each other.
type patientLocks struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func newPatientLocks() *patientLocks {
	return &patientLocks{
		locks: make(map[int64]*sync.Mutex),
	}
}

func (p *patientLocks) acquire(patientID int64) func() {
	p.mu.Lock()
	lock, ok := p.locks[patientID]
	if !ok {
		lock = &sync.Mutex{}
		p.locks[patientID] = lock
	}
	p.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
