package session

import "github.com/ldevreaux/marquee/internal/media"

const subscriptionBufferSize = 16

// Subscription delivers controller state to a consumer. Sends never block;
// a slow consumer misses intermediate snapshots, never current ones.
type Subscription struct {
	Snapshots   <-chan Snapshot
	ItemChanged <-chan media.Item
	Done        <-chan struct{}

	snapshotCh chan Snapshot
	itemCh     chan media.Item
	doneCh     chan struct{}
}

func newSubscription() *Subscription {
	s := &Subscription{
		snapshotCh: make(chan Snapshot, subscriptionBufferSize),
		itemCh:     make(chan media.Item, subscriptionBufferSize),
		doneCh:     make(chan struct{}),
	}
	s.Snapshots = s.snapshotCh
	s.ItemChanged = s.itemCh
	s.Done = s.doneCh
	return s
}

func (s *Subscription) close() {
	close(s.doneCh)
}

func (s *Subscription) sendSnapshot(snap Snapshot) {
	select {
	case s.snapshotCh <- snap:
	default:
		// Drop if buffer full
	}
}

func (s *Subscription) sendItem(item media.Item) {
	select {
	case s.itemCh <- item:
	default:
	}
}
