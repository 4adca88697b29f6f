package datastore

import (
	"sort"
	"sync"

	"github.com/specialistvlad/lidarcore/internal/artifact"
	"github.com/specialistvlad/lidarcore/internal/metrics"
)

// Store is the per-run artifact repository.
type Store struct {
	mu sync.RWMutex

	elpp         *shelf[*artifact.Artifact]
	prepared     *shelf[*artifact.Artifact]
	autoSmoothed *shelf[*artifact.Artifact]
	basic        *shelf[*artifact.Artifact]
	derived      *shelf[*artifact.Artifact]
	constants    *shelf[*artifact.LidarConstant]
	matrices     *shelf[*artifact.Artifact]

	cloudMask *artifact.CloudMask
	header    *artifact.Header

	metrics *metrics.Metrics
}

// Option configures a Store.
type Option func(*Store)

// WithMetrics reports reads and writes to m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

// New creates an empty store.
func New(opts ...Option) *Store {
	cloneArtifact := func(a *artifact.Artifact) *artifact.Artifact { return a.Clone() }
	s := &Store{
		elpp:         newShelf(ELPPSignals, byChannel, cloneArtifact),
		prepared:     newShelf(PreparedSignals, byChannel, cloneArtifact),
		autoSmoothed: newShelf(AutoSmoothedProducts, bySingle, cloneArtifact),
		basic:        newShelf(BasicProducts, byResolution, cloneArtifact),
		derived:      newShelf(DerivedProducts, byResolution, cloneArtifact),
		constants:    newShelf(LidarConstants, byChannel, func(c *artifact.LidarConstant) *artifact.LidarConstant { return c.Clone() }),
		matrices:     newShelf(ProductMatrices, byResolution, cloneArtifact),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func read[V any](s *Store, sh *shelf[V], product, sub string) (V, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, err := sh.get(product, sub)
	s.metrics.StoreRead(string(sh.compartment), err == nil)
	return v, err
}

func readAll[V any](s *Store, sh *shelf[V], product string) ([]V, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, err := sh.list(product)
	s.metrics.StoreRead(string(sh.compartment), err == nil)
	return v, err
}

func write[V any](s *Store, sh *shelf[V], product, sub string, v V) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sh.put(product, sub, v)
	s.metrics.StoreWrite(string(sh.compartment))
}

// stamp records the storage key in the artifact's metadata.
func stamp(a *artifact.Artifact, product string, res artifact.Resolution) *artifact.Artifact {
	if a != nil {
		a.Meta.Product = product
		if res != artifact.NoResolution {
			a.Meta.Resolution = res
		}
	}
	return a
}

// SetELPPSignal stores a raw signal of product, keyed by sig.Meta.Channel.
func (s *Store) SetELPPSignal(product string, sig *artifact.Artifact) {
	write(s, s.elpp, product, sig.Meta.Channel, stamp(sig, product, artifact.NoResolution))
}

// ELPPSignal returns a copy of the raw signal of product/channel.
func (s *Store) ELPPSignal(product, channel string) (*artifact.Artifact, error) {
	return read(s, s.elpp, product, channel)
}

// ELPPSignals returns copies of every raw signal of product, ordered by channel.
func (s *Store) ELPPSignals(product string) ([]*artifact.Artifact, error) {
	return readAll(s, s.elpp, product)
}

// SetPreparedSignal stores a prepared signal of product, keyed by sig.Meta.Channel.
func (s *Store) SetPreparedSignal(product string, sig *artifact.Artifact) {
	write(s, s.prepared, product, sig.Meta.Channel, stamp(sig, product, artifact.NoResolution))
}

// PreparedSignal returns a copy of the prepared signal of product/channel.
func (s *Store) PreparedSignal(product, channel string) (*artifact.Artifact, error) {
	return read(s, s.prepared, product, channel)
}

// PreparedSignals returns copies of every prepared signal of product, ordered by channel.
func (s *Store) PreparedSignals(product string) ([]*artifact.Artifact, error) {
	return readAll(s, s.prepared, product)
}

// SetAutoSmoothedProduct stores a basic product smoothed with its own
// automatically chosen resolution.
func (s *Store) SetAutoSmoothedProduct(product string, a *artifact.Artifact) {
	write(s, s.autoSmoothed, product, "", stamp(a, product, artifact.NoResolution))
}

// AutoSmoothedProduct returns a copy of the auto-smoothed basic product.
func (s *Store) AutoSmoothedProduct(product string) (*artifact.Artifact, error) {
	return read(s, s.autoSmoothed, product, "")
}

// SetBasicProduct stores a common-smoothed basic product at res.
func (s *Store) SetBasicProduct(product string, res artifact.Resolution, a *artifact.Artifact) {
	write(s, s.basic, product, res.String(), stamp(a, product, res))
}

// BasicProduct returns a copy of the common-smoothed basic product at res.
func (s *Store) BasicProduct(product string, res artifact.Resolution) (*artifact.Artifact, error) {
	return read(s, s.basic, product, res.String())
}

// SetDerivedProduct stores a common-smoothed derived product at res.
func (s *Store) SetDerivedProduct(product string, res artifact.Resolution, a *artifact.Artifact) {
	write(s, s.derived, product, res.String(), stamp(a, product, res))
}

// DerivedProduct returns a copy of the common-smoothed derived product at res.
func (s *Store) DerivedProduct(product string, res artifact.Resolution) (*artifact.Artifact, error) {
	return read(s, s.derived, product, res.String())
}

// SetLidarConstant stores the lidar constant derived from product for c.Channel.
func (s *Store) SetLidarConstant(product string, c *artifact.LidarConstant) {
	c.Product = product
	write(s, s.constants, product, c.Channel, c)
}

// LidarConstant returns a copy of the lidar constant of product/channel.
func (s *Store) LidarConstant(product, channel string) (*artifact.LidarConstant, error) {
	return read(s, s.constants, product, channel)
}

// LidarConstants returns copies of every lidar constant of product, ordered by channel.
func (s *Store) LidarConstants(product string) ([]*artifact.LidarConstant, error) {
	return readAll(s, s.constants, product)
}

// SetProductMatrix stores the assembled matrix of productType at res.
func (s *Store) SetProductMatrix(productType string, res artifact.Resolution, a *artifact.Artifact) {
	write(s, s.matrices, productType, res.String(), stamp(a, productType, res))
}

// ProductMatrix returns a copy of the assembled matrix of productType at res.
func (s *Store) ProductMatrix(productType string, res artifact.Resolution) (*artifact.Artifact, error) {
	return read(s, s.matrices, productType, res.String())
}

// SetCloudMask stores the measurement cloud mask. A second, differing mask is
// a conflict; an equal one is accepted.
func (s *Store) SetCloudMask(m *artifact.CloudMask) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cloudMask != nil {
		if !s.cloudMask.Equal(m) {
			return &ConflictError{Slot: CloudMaskSlot, Reason: "a different cloud mask is already stored"}
		}
		return nil
	}
	s.cloudMask = m
	s.metrics.StoreWrite(string(CloudMaskSlot))
	return nil
}

// CloudMask returns a copy of the stored cloud mask.
func (s *Store) CloudMask() (*artifact.CloudMask, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.metrics.StoreRead(string(CloudMaskSlot), s.cloudMask != nil)
	if s.cloudMask == nil {
		return nil, &NotFoundError{What: "cloud mask", Where: string(CloudMaskSlot)}
	}
	return s.cloudMask.Clone(), nil
}

// SetHeader stores the measurement header. A second, differing header is a
// conflict; an equal one is accepted.
func (s *Store) SetHeader(h artifact.Header) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.header != nil {
		if !s.header.Equal(h) {
			return &ConflictError{
				Slot:   HeaderSlot,
				Reason: "header of measurement '" + h.MeasurementID + "' differs from stored measurement '" + s.header.MeasurementID + "'",
			}
		}
		return nil
	}
	s.header = &h
	s.metrics.StoreWrite(string(HeaderSlot))
	return nil
}

// Header returns the stored measurement header.
func (s *Store) Header() (artifact.Header, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.metrics.StoreRead(string(HeaderSlot), s.header != nil)
	if s.header == nil {
		return artifact.Header{}, &NotFoundError{What: "header", Where: string(HeaderSlot)}
	}
	return *s.header, nil
}

// Keys lists every populated slot, sorted by path.
func (s *Store) Keys() []Key {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var keys []Key
	keys = append(keys, s.elpp.keys()...)
	keys = append(keys, s.prepared.keys()...)
	keys = append(keys, s.autoSmoothed.keys()...)
	keys = append(keys, s.basic.keys()...)
	keys = append(keys, s.derived.keys()...)
	keys = append(keys, s.constants.keys()...)
	keys = append(keys, s.matrices.keys()...)
	if s.cloudMask != nil {
		keys = append(keys, Key{Compartment: CloudMaskSlot})
	}
	if s.header != nil {
		keys = append(keys, Key{Compartment: HeaderSlot})
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	return keys
}
