package bfs

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Domenick1991/flightline/config"
	"github.com/Domenick1991/flightline/internal/cache"
	"github.com/Domenick1991/flightline/internal/domain"
	"github.com/Domenick1991/flightline/internal/kafka"
	"github.com/Domenick1991/flightline/internal/service/signoff"
	"github.com/Domenick1991/flightline/internal/service/signoff/signofftest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type memBFSRepository struct {
	mu      sync.Mutex
	nextID  int64
	rows    map[int64]domain.BFS
	updates int
}

func newMemBFSRepository() *memBFSRepository {
	return &memBFSRepository{rows: make(map[int64]domain.BFS)}
}

func (r *memBFSRepository) Create(_ context.Context, b *domain.BFS) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	b.ID = r.nextID
	r.rows[b.ID] = *b
	return nil
}

func (r *memBFSRepository) GetByID(_ context.Context, id int64) (*domain.BFS, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.rows[id]
	if !ok {
		return nil, domain.NotFound("BFS record", id)
	}
	return &b, nil
}

func (r *memBFSRepository) Update(_ context.Context, b *domain.BFS) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates++
	r.rows[b.ID] = *b
	return nil
}

type MockAircraftReader struct {
	mock.Mock
}

func (m *MockAircraftReader) GetByID(ctx context.Context, id int64) (*domain.Aircraft, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Aircraft), args.Error(1)
}

type userSet map[int64]bool

func (u userSet) GetByID(_ context.Context, id int64) (*domain.User, error) {
	if !u[id] {
		return nil, domain.NotFound("user", id)
	}
	return &domain.User{ID: id, Active: true}, nil
}

const (
	fsiInitial int64 = 1
	fsiFinal   int64 = 2
	engineer   int64 = 10
	electrical int64 = 11
	ordnance   int64 = 12
	radio      int64 = 13
	senior     int64 = 14
	supervisor int64 = 15
)

type fixture struct {
	svc     *BFSService
	records *memBFSRepository
	pub     *signofftest.Publisher
}

func newFixture(t *testing.T, policy signoff.Policy) *fixture {
	t.Helper()
	pins := signofftest.PINs{
		fsiInitial: "1234",
		fsiFinal:   "5678",
		engineer:   "1010",
		electrical: "1111",
		ordnance:   "1212",
		radio:      "1313",
		senior:     "1414",
		supervisor: "1515",
	}
	users := userSet{}
	for id := range pins {
		users[id] = true
	}
	aircraft := new(MockAircraftReader)
	aircraft.On("GetByID", mock.Anything, int64(1)).Return(&domain.Aircraft{ID: 1, TailNumber: "KT-101"}, nil)
	aircraft.On("GetByID", mock.Anything, mock.Anything).Return(nil, domain.NotFound("aircraft", 0))

	pub := &signofftest.Publisher{}
	records := newMemBFSRepository()
	wf := signoff.Workflow{
		Signer: signoff.NewSigner(pins, signofftest.Prover{}).WithClock(signofftest.Clock),
		Locker: cache.NewLocal(time.Second),
		Events: signoff.NewEvents(pub, config.KafkaConfig{WorkflowTopic: "wf"}, nil),
		Policy: policy,
	}
	return &fixture{
		svc:     NewBFSService(records, aircraft, users, wf),
		records: records,
		pub:     pub,
	}
}

func (f *fixture) initiate(t *testing.T) *domain.BFS {
	t.Helper()
	b, err := f.svc.Initiate(context.Background(), fsiInitial, InitiateInput{AircraftID: 1})
	require.NoError(t, err)
	return b
}

func (f *fixture) assigned(t *testing.T, input AssignInput) *domain.BFS {
	t.Helper()
	ctx := context.Background()
	b := f.initiate(t)
	_, err := f.svc.FSIInitialAuth(ctx, b.ID, fsiInitial, "1234")
	require.NoError(t, err)
	b, err = f.svc.AssignPersonnel(ctx, b.ID, fsiInitial, input)
	require.NoError(t, err)
	return b
}

func TestBFSService_EndToEnd(t *testing.T) {
	f := newFixture(t, signoff.DefaultPolicy())
	ctx := context.Background()

	b := f.initiate(t)
	assert.Equal(t, domain.BFSStatusInProgress, b.Status)
	assert.Equal(t, signofftest.Clock(), b.ServiceDate)

	b, err := f.svc.FSIInitialAuth(ctx, b.ID, fsiInitial, "1234")
	require.NoError(t, err)
	assert.Equal(t, domain.BFSStatusPersonnelSelection, b.Status)
	assert.Equal(t, fsiInitial, b.FSIInitial.SignedBy)
	assert.Equal(t, "bfs/1/fsi_initial/1", b.FSIInitial.PINProof)

	b, err = f.svc.AssignPersonnel(ctx, b.ID, fsiInitial, AssignInput{AE: engineer})
	require.NoError(t, err)
	assert.Equal(t, domain.BFSStatusInProgress, b.Status)
	assert.True(t, b.PersonnelAdded)

	b, err = f.svc.SignTradesman(ctx, b.ID, engineer, "AE", "1010")
	require.NoError(t, err)
	ae := b.Slot(domain.TradeAE)
	require.NotNil(t, ae.SignedAt)
	assert.Equal(t, engineer, ae.SignedBy)

	b, err = f.svc.SignFSI(ctx, b.ID, fsiFinal, "5678")
	require.NoError(t, err)
	assert.Equal(t, domain.BFSStatusFSIApproved, b.Status)
	assert.Equal(t, fsiFinal, b.FSIFinal.SignedBy)

	assert.Equal(t, []string{
		kafka.EventBFSInitiated,
		kafka.EventFSIAuthenticated,
		kafka.EventPersonnelAssigned,
		kafka.EventTradeSigned,
		kafka.EventBFSApproved,
	}, f.pub.Types("wf"))
	assert.Equal(t, map[string]int64{"AE": engineer}, f.pub.Events[2].Assignees)
	assert.Equal(t, "AE", f.pub.Events[3].Trade)
}

func TestBFSService_EndToEndSingleFSI(t *testing.T) {
	f := newFixture(t, signoff.DefaultPolicy())
	ctx := context.Background()

	b := f.initiate(t)
	b, err := f.svc.FSIInitialAuth(ctx, b.ID, fsiInitial, "1234")
	require.NoError(t, err)
	assert.Equal(t, domain.BFSStatusPersonnelSelection, b.Status)

	b, err = f.svc.AssignPersonnel(ctx, b.ID, fsiInitial, AssignInput{AE: engineer})
	require.NoError(t, err)
	assert.True(t, b.PersonnelAdded)

	b, err = f.svc.SignTradesman(ctx, b.ID, engineer, "AE", "1010")
	require.NoError(t, err)
	require.NotNil(t, b.Slot(domain.TradeAE).SignedAt)

	// the same FSI closes with a different PIN
	b, err = f.svc.SignFSI(ctx, b.ID, fsiInitial, "5678")
	require.NoError(t, err)
	assert.Equal(t, domain.BFSStatusFSIApproved, b.Status)
	assert.Equal(t, fsiInitial, b.FSIFinal.SignedBy)
}

func TestBFSService_Initiate(t *testing.T) {
	f := newFixture(t, signoff.DefaultPolicy())
	ctx := context.Background()

	_, err := f.svc.Initiate(ctx, fsiInitial, InitiateInput{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.svc.Initiate(ctx, fsiInitial, InitiateInput{AircraftID: 99})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	fuel := 1800.0
	date := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	b, err := f.svc.Initiate(ctx, fsiInitial, InitiateInput{AircraftID: 1, ServiceDate: &date, Before: domain.Readings{FuelLevel: &fuel}, Remarks: "  dawn check "})
	require.NoError(t, err)
	assert.Equal(t, date, b.ServiceDate)
	assert.Equal(t, "dawn check", b.Remarks)
	assert.Equal(t, domain.BFSStateCreated, b.State())
}

func TestBFSService_FSIInitialAuth(t *testing.T) {
	f := newFixture(t, signoff.DefaultPolicy())
	ctx := context.Background()
	b := f.initiate(t)

	_, err := f.svc.FSIInitialAuth(ctx, b.ID, fsiInitial, "")
	assert.ErrorIs(t, err, domain.ErrPINRequired)

	verifying := newFixture(t, signoff.Policy{VerifyFSIPIN: true})
	vb := verifying.initiate(t)
	_, err = verifying.svc.FSIInitialAuth(ctx, vb.ID, fsiInitial, "9999")
	assert.ErrorIs(t, err, domain.ErrInvalidPIN)
	stored, err := verifying.svc.Get(ctx, vb.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BFSStateCreated, stored.State())

	_, err = f.svc.FSIInitialAuth(ctx, b.ID, fsiInitial, "1234")
	require.NoError(t, err)

	_, err = f.svc.FSIInitialAuth(ctx, b.ID, fsiInitial, "1234")
	assert.ErrorIs(t, err, domain.ErrAlreadyAuthenticated)

	_, err = f.svc.FSIInitialAuth(ctx, 404, fsiInitial, "1234")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBFSService_AssignPersonnel(t *testing.T) {
	f := newFixture(t, signoff.DefaultPolicy())
	ctx := context.Background()
	b := f.initiate(t)

	_, err := f.svc.AssignPersonnel(ctx, b.ID, fsiInitial, AssignInput{AE: engineer})
	assert.ErrorIs(t, err, domain.ErrFSINotAuthenticated)

	_, err = f.svc.FSIInitialAuth(ctx, b.ID, fsiInitial, "1234")
	require.NoError(t, err)

	_, err = f.svc.AssignPersonnel(ctx, b.ID, fsiInitial, AssignInput{AL: electrical, AO: ordnance, AR: radio, SE: senior, Supervisor: supervisor})
	assert.ErrorIs(t, err, domain.ErrAERequired)

	_, err = f.svc.AssignPersonnel(ctx, b.ID, fsiInitial, AssignInput{AE: engineer, AL: 77})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	stored, err := f.svc.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.False(t, stored.PersonnelAdded)
	assert.Empty(t, stored.Assignees())

	b, err = f.svc.AssignPersonnel(ctx, b.ID, fsiInitial, AssignInput{AE: engineer, SE: senior, Supervisor: supervisor, SupervisorRequired: true})
	require.NoError(t, err)
	assert.True(t, b.SupervisorRequired)
	assert.Equal(t, map[domain.Trade]int64{
		domain.TradeAE:         engineer,
		domain.TradeSE:         senior,
		domain.TradeSupervisor: supervisor,
	}, b.Assignees())
}

func TestBFSService_SignTradesmanGuards(t *testing.T) {
	f := newFixture(t, signoff.DefaultPolicy())
	ctx := context.Background()

	created := f.initiate(t)
	b := f.assigned(t, AssignInput{AE: engineer})

	tests := []struct {
		name    string
		id      int64
		trade   string
		pin     string
		wantErr error
	}{
		{"missing trade", b.ID, "", "1010", domain.ErrMissingFields},
		{"missing pin", b.ID, "AE", "", domain.ErrMissingFields},
		{"unknown trade", b.ID, "XX", "1010", domain.ErrInvalidTrade},
		{"supervisor is not a trade", b.ID, "SUPERVISOR", "1515", domain.ErrInvalidTrade},
		{"personnel not assigned", created.ID, "AE", "1010", domain.ErrPersonnelNotAssigned},
		{"unassigned trade", b.ID, "AL", "1111", domain.ErrTradeUnassigned},
		{"caller pin is not assignee pin", b.ID, "AE", "1234", domain.ErrInvalidPIN},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before, err := f.records.GetByID(ctx, tt.id)
			require.NoError(t, err)
			published := len(f.pub.Events)

			_, err = f.svc.SignTradesman(ctx, tt.id, fsiInitial, tt.trade, tt.pin)
			assert.ErrorIs(t, err, tt.wantErr)

			after, err := f.records.GetByID(ctx, tt.id)
			require.NoError(t, err)
			assert.Equal(t, before, after)
			assert.Len(t, f.pub.Events, published)
		})
	}

	// lower-case trade codes are accepted; the signer is the assignee
	signed, err := f.svc.SignTradesman(ctx, b.ID, fsiInitial, "ae", "1010")
	require.NoError(t, err)
	assert.Equal(t, engineer, signed.Slot(domain.TradeAE).SignedBy)
}

func TestBFSService_SignatureOnlyByAssignee(t *testing.T) {
	f := newFixture(t, signoff.DefaultPolicy())
	ctx := context.Background()
	b := f.assigned(t, AssignInput{AE: engineer, AL: electrical})

	b, err := f.svc.SignTradesman(ctx, b.ID, electrical, "AL", "1111")
	require.NoError(t, err)

	for i, slot := range b.Slots {
		if slot.Signed() {
			assert.True(t, slot.HasAssignee(), domain.Trade(i).String())
			assert.Equal(t, slot.Assigned, slot.SignedBy, domain.Trade(i).String())
		}
	}
}

func TestBFSService_ResignAndReassign(t *testing.T) {
	ctx := context.Background()

	f := newFixture(t, signoff.DefaultPolicy())
	b := f.assigned(t, AssignInput{AE: engineer})
	_, err := f.svc.SignTradesman(ctx, b.ID, engineer, "AE", "1010")
	require.NoError(t, err)
	_, err = f.svc.SignTradesman(ctx, b.ID, engineer, "AE", "1010")
	require.NoError(t, err, "re-signing overwrites by default")

	b, err = f.svc.AssignPersonnel(ctx, b.ID, fsiInitial, AssignInput{AE: senior})
	require.NoError(t, err)
	assert.False(t, b.Slot(domain.TradeAE).Signed(), "reassignment clears the signature")

	strict := newFixture(t, signoff.Policy{RejectResign: true})
	b = strict.assigned(t, AssignInput{AE: engineer})
	_, err = strict.svc.SignTradesman(ctx, b.ID, engineer, "AE", "1010")
	require.NoError(t, err)
	_, err = strict.svc.SignTradesman(ctx, b.ID, engineer, "AE", "1010")
	assert.ErrorIs(t, err, domain.ErrAlreadySigned)
}

func TestBFSService_SignSupervisor(t *testing.T) {
	f := newFixture(t, signoff.DefaultPolicy())
	ctx := context.Background()

	_, err := f.svc.SignSupervisor(ctx, 1, supervisor, "")
	assert.ErrorIs(t, err, domain.ErrPINRequired)

	notNeeded := f.assigned(t, AssignInput{AE: engineer, Supervisor: supervisor})
	_, err = f.svc.SignSupervisor(ctx, notNeeded.ID, supervisor, "1515")
	assert.ErrorIs(t, err, domain.ErrSupervisorNotNeeded)

	unassigned := f.assigned(t, AssignInput{AE: engineer, SupervisorRequired: true})
	_, err = f.svc.SignSupervisor(ctx, unassigned.ID, supervisor, "1515")
	assert.ErrorIs(t, err, domain.ErrSupervisorUnassigned)

	b := f.assigned(t, AssignInput{AE: engineer, Supervisor: supervisor, SupervisorRequired: true})
	_, err = f.svc.SignSupervisor(ctx, b.ID, supervisor, "1010")
	assert.ErrorIs(t, err, domain.ErrInvalidPIN)

	b, err = f.svc.SignSupervisor(ctx, b.ID, fsiInitial, "1515")
	require.NoError(t, err)
	assert.Equal(t, supervisor, b.Slot(domain.TradeSupervisor).SignedBy)
}

func TestBFSService_SignFSI(t *testing.T) {
	ctx := context.Background()

	f := newFixture(t, signoff.DefaultPolicy())
	created := f.initiate(t)
	_, err := f.svc.SignFSI(ctx, created.ID, fsiFinal, "5678")
	assert.ErrorIs(t, err, domain.ErrFSINotInitialized)

	_, err = f.svc.SignFSI(ctx, created.ID, fsiFinal, "")
	assert.ErrorIs(t, err, domain.ErrPINRequired)

	verifying := newFixture(t, signoff.Policy{VerifyFSIPIN: true})
	vb := verifying.assigned(t, AssignInput{AE: engineer})
	_, err = verifying.svc.SignFSI(ctx, vb.ID, fsiFinal, "1234")
	assert.ErrorIs(t, err, domain.ErrInvalidPIN)

	b := f.assigned(t, AssignInput{AE: engineer})
	// approval without the AE signature is allowed unless the policy says otherwise
	b, err = f.svc.SignFSI(ctx, b.ID, fsiFinal, "5678")
	require.NoError(t, err)
	assert.Equal(t, domain.BFSStateApproved, b.State())

	_, err = f.svc.SignTradesman(ctx, b.ID, engineer, "AE", "1010")
	assert.ErrorIs(t, err, domain.ErrBFSClosed)
	_, err = f.svc.AssignPersonnel(ctx, b.ID, fsiInitial, AssignInput{AE: engineer})
	assert.ErrorIs(t, err, domain.ErrBFSClosed)
	_, err = f.svc.SignFSI(ctx, b.ID, fsiFinal, "5678")
	assert.ErrorIs(t, err, domain.ErrBFSClosed)
	_, err = f.svc.FSIInitialAuth(ctx, b.ID, fsiInitial, "1234")
	assert.ErrorIs(t, err, domain.ErrAlreadyAuthenticated)

	strict := newFixture(t, signoff.Policy{RequireAllSignatures: true})
	b = strict.assigned(t, AssignInput{AE: engineer, SE: senior})
	_, err = strict.svc.SignTradesman(ctx, b.ID, engineer, "AE", "1010")
	require.NoError(t, err)
	_, err = strict.svc.SignFSI(ctx, b.ID, fsiFinal, "5678")
	assert.ErrorIs(t, err, domain.ErrSignaturesIncomplete)
	assert.Contains(t, err.Error(), "SE")

	_, err = strict.svc.SignTradesman(ctx, b.ID, senior, "SE", "1414")
	require.NoError(t, err)
	b, err = strict.svc.SignFSI(ctx, b.ID, fsiFinal, "5678")
	require.NoError(t, err)
	assert.Equal(t, domain.BFSStatusFSIApproved, b.Status)
}

func TestBFSService_ConcurrentSignaturesAreNotLost(t *testing.T) {
	f := newFixture(t, signoff.DefaultPolicy())
	ctx := context.Background()
	b := f.assigned(t, AssignInput{AE: engineer, AL: electrical, AO: ordnance, AR: radio, SE: senior})

	signers := map[string]string{"AE": "1010", "AL": "1111", "AO": "1212", "AR": "1313", "SE": "1414"}
	var wg sync.WaitGroup
	for trade, pin := range signers {
		wg.Add(1)
		go func(trade, pin string) {
			defer wg.Done()
			_, err := f.svc.SignTradesman(ctx, b.ID, fsiInitial, trade, pin)
			assert.NoError(t, err)
		}(trade, pin)
	}
	wg.Wait()

	stored, err := f.svc.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.UnsignedAssignments())
}
