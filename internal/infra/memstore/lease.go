package memstore

import "context"

// LeaseManager grants named leases within this process only.
type LeaseManager struct{ s *Store }

func (m *LeaseManager) TryAcquire(ctx context.Context, name string) (func(), bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	unlock, ok := m.s.leases.TryLock(name)
	if !ok {
		return nil, false, nil
	}
	return unlock, true, nil
}
