package factory

import (
	"time"

	"github.com/tmccall/arenad/internal/dependencies/mocks"
	"github.com/tmccall/arenad/internal/model"
	"github.com/tmccall/arenad/internal/storage/memory"
	"github.com/tmccall/arenad/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock     *mocks.MockClock
	MockRandom    *mocks.MockRandom
	MockPublisher *mocks.MockPublisher
}

// NewTestApp creates an App configured for testing: in-memory storage, a
// mock clock and random source, and a capturing publisher in place of the
// websocket hub.
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()
	mockPublisher := mocks.NewMockPublisher()

	app := newWithDependencies(store, mockPublisher, model.DefaultConfig(), mockClock, mockRandom, testutil.NopLogger())

	return &TestApp{
		App:           app,
		MockClock:     mockClock,
		MockRandom:    mockRandom,
		MockPublisher: mockPublisher,
	}
}
