package cache

import "rrs/pkg/xlog"

var logger = xlog.GetLogger()

// ReadySignal is the boundary hook the host wiring fires once it is
// assembled. It triggers cache initialization if that has not happened
// and logs the decision either way.
type ReadySignal struct {
	cache *Cache
}

func NewReadySignal(c *Cache) *ReadySignal {
	return &ReadySignal{cache: c}
}

// OnReady initializes the cache through fn unless it already is
// initialized.
func (s *ReadySignal) OnReady(fn func() error) (err error) {
	if s.cache.IsInitialized() {
		logger.Infof("cache already initialized, recovery skipped")
		return
	}

	logger.Infof("context ready, running recovery initialization")

	err = s.cache.Initialize(fn)
	if err != nil {
		logger.Errorf("cache initialization failed with err:%s", err)
		return
	}

	logger.Infof("cache initialized, reads open")
	return
}
