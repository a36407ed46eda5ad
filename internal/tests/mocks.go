package tests

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"biketaxi/internal/domain"
	"biketaxi/internal/redis"
	"biketaxi/internal/repository"
	"biketaxi/internal/service"
)

// ──────────────────────────────────────────────
// MOCK DRIVER REPOSITORY
// ──────────────────────────────────────────────

// MockDriverRepository is a mock implementation of DriverRepository.
type MockDriverRepository struct {
	mu      sync.RWMutex
	drivers map[string]*domain.Driver

	// Counters for verification
	CreateCallCount         int32
	UpdateStatusCallCount   int32
	IncrementRidesCallCount int32

	// Error injection
	CreateError       error
	UpdateStatusError error
}

// NewMockDriverRepository creates a new mock driver repository.
func NewMockDriverRepository() *MockDriverRepository {
	return &MockDriverRepository{
		drivers: make(map[string]*domain.Driver),
	}
}

// AddDriver adds a driver to the mock repository.
func (m *MockDriverRepository) AddDriver(driver *domain.Driver) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drivers[driver.ID] = driver
}

func (m *MockDriverRepository) Create(ctx context.Context, driver *domain.Driver) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drivers[driver.ID] = driver
	return nil
}

func (m *MockDriverRepository) GetByID(ctx context.Context, id string) (*domain.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	driver, ok := m.drivers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	// Return a copy to avoid mutation issues.
	copy := *driver
	return &copy, nil
}

func (m *MockDriverRepository) GetByPhone(ctx context.Context, phone string) (*domain.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, d := range m.drivers {
		if d.Phone == phone {
			copy := *d
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockDriverRepository) GetAll(ctx context.Context) ([]*domain.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Driver, 0, len(m.drivers))
	for _, d := range m.drivers {
		copy := *d
		result = append(result, &copy)
	}
	return result, nil
}

func (m *MockDriverRepository) UpdateStatus(ctx context.Context, id string, status domain.DriverStatus) error {
	atomic.AddInt32(&m.UpdateStatusCallCount, 1)
	if m.UpdateStatusError != nil {
		return m.UpdateStatusError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	driver, ok := m.drivers[id]
	if !ok {
		return repository.ErrNotFound
	}
	driver.Status = status
	return nil
}

func (m *MockDriverRepository) UpdateLocation(ctx context.Context, id string, lat, lng float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	driver, ok := m.drivers[id]
	if !ok {
		return repository.ErrNotFound
	}
	driver.LastLat = &lat
	driver.LastLng = &lng
	return nil
}

func (m *MockDriverRepository) IncrementRides(ctx context.Context, id string) error {
	atomic.AddInt32(&m.IncrementRidesCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	driver, ok := m.drivers[id]
	if !ok {
		return repository.ErrNotFound
	}
	driver.TotalRides++
	return nil
}

// GetDriver returns driver for test assertions.
func (m *MockDriverRepository) GetDriver(id string) *domain.Driver {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.drivers[id]
}

// ──────────────────────────────────────────────
// MOCK USER REPOSITORY
// ──────────────────────────────────────────────

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User

	// Counters for verification
	CreateCallCount         int32
	IncrementRidesCallCount int32

	// Error injection
	CreateError error
}

// NewMockUserRepository creates a new mock user repository.
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users: make(map[string]*domain.User),
	}
}

// AddUser adds a user to the mock repository.
func (m *MockUserRepository) AddUser(user *domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = user
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = user
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	user, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *user
	return &copy, nil
}

func (m *MockUserRepository) GetByPhone(ctx context.Context, phone string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Phone == phone {
			copy := *u
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockUserRepository) GetAll(ctx context.Context) ([]*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.User, 0, len(m.users))
	for _, u := range m.users {
		copy := *u
		result = append(result, &copy)
	}
	return result, nil
}

func (m *MockUserRepository) IncrementRides(ctx context.Context, id string) error {
	atomic.AddInt32(&m.IncrementRidesCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.TotalRides++
	return nil
}

// GetUser returns user for test assertions.
func (m *MockUserRepository) GetUser(id string) *domain.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.users[id]
}

// ──────────────────────────────────────────────
// MOCK RIDE REPOSITORY
// ──────────────────────────────────────────────

// MockRideRepository is a mock implementation of RideRepository.
type MockRideRepository struct {
	mu    sync.RWMutex
	rides map[string]*domain.Ride

	// Counters for verification
	CreateCallCount         int32
	UpdateCallCount         int32
	UpdateIfStatusCallCount int32

	// Error injection
	CreateError error
	UpdateError error
}

// NewMockRideRepository creates a new mock ride repository.
func NewMockRideRepository() *MockRideRepository {
	return &MockRideRepository{
		rides: make(map[string]*domain.Ride),
	}
}

// AddRide adds a ride to the mock repository.
func (m *MockRideRepository) AddRide(ride *domain.Ride) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rides[ride.ID] = ride
}

func (m *MockRideRepository) Create(ctx context.Context, ride *domain.Ride) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rides[ride.ID] = ride
	return nil
}

func (m *MockRideRepository) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ride, ok := m.rides[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	// Return a copy to avoid mutation issues.
	copy := *ride
	return &copy, nil
}

func (m *MockRideRepository) GetAll(ctx context.Context) ([]*domain.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Ride, 0, len(m.rides))
	for _, r := range m.rides {
		copy := *r
		result = append(result, &copy)
	}
	return result, nil
}

func (m *MockRideRepository) GetByRider(ctx context.Context, riderID string) ([]*domain.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Ride
	for _, r := range m.rides {
		if r.RiderID == riderID {
			copy := *r
			result = append(result, &copy)
		}
	}
	return result, nil
}

func (m *MockRideRepository) Update(ctx context.Context, ride *domain.Ride) error {
	atomic.AddInt32(&m.UpdateCallCount, 1)
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rides[ride.ID]; !ok {
		return repository.ErrNotFound
	}
	copy := *ride
	m.rides[ride.ID] = &copy
	return nil
}

func (m *MockRideRepository) UpdateIfStatus(ctx context.Context, ride *domain.Ride, expected domain.RideStatus) error {
	atomic.AddInt32(&m.UpdateIfStatusCallCount, 1)
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.rides[ride.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if stored.Status != expected {
		return repository.ErrConflict
	}
	copy := *ride
	m.rides[ride.ID] = &copy
	return nil
}

// GetRide returns the ride by ID (for test assertions).
func (m *MockRideRepository) GetRide(id string) *domain.Ride {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rides[id]
}

// CountRides returns the number of rides.
func (m *MockRideRepository) CountRides() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rides)
}

// ──────────────────────────────────────────────
// MOCK RIDE LOCATION REPOSITORY
// ──────────────────────────────────────────────

// MockRideLocationRepository is a mock implementation of RideLocationRepository.
type MockRideLocationRepository struct {
	mu        sync.RWMutex
	waypoints []*domain.RideLocation

	// Counters for verification
	CreateCallCount int32

	// Error injection
	CreateError error
}

// NewMockRideLocationRepository creates a new mock ride location repository.
func NewMockRideLocationRepository() *MockRideLocationRepository {
	return &MockRideLocationRepository{}
}

func (m *MockRideLocationRepository) Create(ctx context.Context, loc *domain.RideLocation) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *loc
	m.waypoints = append(m.waypoints, &copy)
	return nil
}

func (m *MockRideLocationRepository) GetByRide(ctx context.Context, rideID string) ([]*domain.RideLocation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.RideLocation
	for _, w := range m.waypoints {
		if w.RideID == rideID {
			copy := *w
			result = append(result, &copy)
		}
	}
	return result, nil
}

// CountWaypoints returns the number of persisted waypoints.
func (m *MockRideLocationRepository) CountWaypoints() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.waypoints)
}

// ──────────────────────────────────────────────
// MOCK LOCATION STORES
// ──────────────────────────────────────────────

// MockDriverLocationStore is an in-memory DriverLocationStoreInterface.
type MockDriverLocationStore struct {
	mu      sync.RWMutex
	samples map[string]redis.LocationSample

	// Counters for verification
	SetCallCount    int32
	RemoveCallCount int32

	// Error injection
	SetError error
	GetError error
}

// NewMockDriverLocationStore creates a new mock driver location store.
func NewMockDriverLocationStore() *MockDriverLocationStore {
	return &MockDriverLocationStore{
		samples: make(map[string]redis.LocationSample),
	}
}

// AddSample seeds a position for a driver.
func (m *MockDriverLocationStore) AddSample(driverID string, lat, lng float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.samples[driverID] = redis.LocationSample{Lat: lat, Lng: lng, Timestamp: time.Now()}
}

func (m *MockDriverLocationStore) Set(ctx context.Context, driverID string, lat, lng float64, at time.Time) error {
	atomic.AddInt32(&m.SetCallCount, 1)
	if m.SetError != nil {
		return m.SetError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.samples[driverID] = redis.LocationSample{Lat: lat, Lng: lng, Timestamp: at}
	return nil
}

func (m *MockDriverLocationStore) Get(ctx context.Context, driverID string) (*redis.LocationSample, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	sample, ok := m.samples[driverID]
	if !ok {
		return nil, nil
	}
	return &sample, nil
}

func (m *MockDriverLocationStore) Remove(ctx context.Context, driverID string) error {
	atomic.AddInt32(&m.RemoveCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.samples, driverID)
	return nil
}

// HasSample checks if a driver position exists.
func (m *MockDriverLocationStore) HasSample(driverID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.samples[driverID]
	return ok
}

// MockRideLocationStore is an in-memory RideLocationStoreInterface.
type MockRideLocationStore struct {
	mu      sync.RWMutex
	samples map[string]redis.LocationSample

	// Counters for verification
	SetCallCount int32

	// Error injection
	SetError error
}

// NewMockRideLocationStore creates a new mock ride location store.
func NewMockRideLocationStore() *MockRideLocationStore {
	return &MockRideLocationStore{
		samples: make(map[string]redis.LocationSample),
	}
}

func (m *MockRideLocationStore) Set(ctx context.Context, rideID string, lat, lng float64, at time.Time) error {
	atomic.AddInt32(&m.SetCallCount, 1)
	if m.SetError != nil {
		return m.SetError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.samples[rideID] = redis.LocationSample{Lat: lat, Lng: lng, Timestamp: at}
	return nil
}

func (m *MockRideLocationStore) Get(ctx context.Context, rideID string) (*redis.LocationSample, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sample, ok := m.samples[rideID]
	if !ok {
		return nil, nil
	}
	return &sample, nil
}

// ──────────────────────────────────────────────
// RECORDING NOTIFICATION SINK
// ──────────────────────────────────────────────

// Notification is one recorded delivery.
type Notification struct {
	Channel service.Channel
	ID      string
	Event   string
}

// RecordingSink captures notifications for test assertions.
type RecordingSink struct {
	mu            sync.Mutex
	notifications []Notification
}

// NewRecordingSink creates a new recording sink.
func NewRecordingSink() *RecordingSink {
	return &RecordingSink{}
}

func (s *RecordingSink) Notify(_ context.Context, channel service.Channel, id string, event string, _ any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = append(s.notifications, Notification{Channel: channel, ID: id, Event: event})
}

// Notifications returns all recorded deliveries.
func (s *RecordingSink) Notifications() []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]Notification, len(s.notifications))
	copy(result, s.notifications)
	return result
}

// CountFor returns the number of deliveries to a channel/id pair.
func (s *RecordingSink) CountFor(channel service.Channel, id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, n := range s.notifications {
		if n.Channel == channel && n.ID == id {
			count++
		}
	}
	return count
}

// Reset clears recorded deliveries.
func (s *RecordingSink) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = nil
}

// Interface conformance checks.
var (
	_ repository.DriverRepository        = (*MockDriverRepository)(nil)
	_ repository.UserRepository          = (*MockUserRepository)(nil)
	_ repository.RideRepository          = (*MockRideRepository)(nil)
	_ repository.RideLocationRepository  = (*MockRideLocationRepository)(nil)
	_ redis.DriverLocationStoreInterface = (*MockDriverLocationStore)(nil)
	_ redis.RideLocationStoreInterface   = (*MockRideLocationStore)(nil)
	_ service.NotificationSink           = (*RecordingSink)(nil)
)
