package transaction_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/attar/internal/catalog"
	"github.com/MrJamesThe3rd/attar/internal/customer"
	"github.com/MrJamesThe3rd/attar/internal/sale"
	"github.com/MrJamesThe3rd/attar/internal/transaction"
)

func TestService_Record(t *testing.T) {
	type args struct {
		tx *transaction.Transaction
	}

	type testCase struct {
		name      string
		args      args
		setupMock func(m *transaction.MockRepository)
		wantErr   error
	}

	tests := []testCase{
		{
			name: "Success",
			args: args{tx: &transaction.Transaction{ID: uuid.New(), Status: transaction.StatusCompleted}},
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().Append(gomock.Any(), gomock.Any()).Return(nil)
			},
		},
		{
			name: "RepoError",
			args: args{tx: &transaction.Transaction{ID: uuid.New(), Status: transaction.StatusPending}},
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().Append(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))
			},
			wantErr: errors.New("disk full"),
		},
		{
			name:    "RejectsSyncedOnCreate",
			args:    args{tx: &transaction.Transaction{ID: uuid.New(), Status: transaction.StatusSynced}},
			wantErr: transaction.ErrInvalidTransition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := transaction.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := transaction.NewService(repo)
			err := svc.Record(context.Background(), tt.args.tx)

			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)

			if errors.Is(tt.wantErr, transaction.ErrInvalidTransition) {
				assert.ErrorIs(t, err, transaction.ErrInvalidTransition)
			}
		})
	}
}

func TestService_MarkSynced(t *testing.T) {
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	type testCase struct {
		name      string
		status    transaction.Status
		setupMock func(m *transaction.MockRepository, id uuid.UUID)
		wantErr   bool
	}

	tests := []testCase{
		{
			name:   "FromPending",
			status: transaction.StatusPending,
			setupMock: func(m *transaction.MockRepository, id uuid.UUID) {
				m.EXPECT().MarkSynced(gomock.Any(), id, at).Return(nil)
			},
		},
		{
			name:   "FromCompleted",
			status: transaction.StatusCompleted,
			setupMock: func(m *transaction.MockRepository, id uuid.UUID) {
				m.EXPECT().MarkSynced(gomock.Any(), id, at).Return(nil)
			},
		},
		{
			name:   "AlreadySyncedIsNoop",
			status: transaction.StatusSynced,
		},
		{
			name:    "UnknownStatus",
			status:  transaction.Status("refunded"),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			id := uuid.New()
			repo := transaction.NewMockRepository(ctrl)
			repo.EXPECT().GetTransaction(gomock.Any(), id).Return(&transaction.Transaction{ID: id, Status: tt.status}, nil)

			if tt.setupMock != nil {
				tt.setupMock(repo, id)
			}

			err := transaction.NewService(repo).MarkSynced(context.Background(), id, at)
			if tt.wantErr {
				assert.ErrorIs(t, err, transaction.ErrInvalidTransition)
				return
			}

			assert.NoError(t, err)
		})
	}
}

func TestService_Ingest(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := transaction.NewMockRepository(ctrl)
	svc := transaction.NewService(repo)
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	tx := &transaction.Transaction{ID: uuid.New(), Status: transaction.StatusPending}

	gomock.InOrder(
		repo.EXPECT().Append(gomock.Any(), tx).Return(nil),
		repo.EXPECT().Append(gomock.Any(), tx).Return(transaction.ErrDuplicate),
	)

	created, err := svc.Ingest(context.Background(), tx, at)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, transaction.StatusSynced, tx.Status)

	created, err = svc.Ingest(context.Background(), tx, at)
	require.NoError(t, err)
	assert.False(t, created)
}

func TestService_Unsynced(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := transaction.NewMockRepository(ctrl)
	repo.EXPECT().
		ListTransactions(gomock.Any(), transaction.ListFilter{
			Statuses: []transaction.Status{transaction.StatusPending, transaction.StatusCompleted},
			Limit:    50,
		}).
		Return([]*transaction.Transaction{{ID: uuid.New()}}, nil)

	got, err := transaction.NewService(repo).Unsynced(context.Background(), 50)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestStatus_CanAdvance(t *testing.T) {
	assert.True(t, transaction.StatusPending.CanAdvance(transaction.StatusSynced))
	assert.True(t, transaction.StatusCompleted.CanAdvance(transaction.StatusSynced))
	assert.False(t, transaction.StatusSynced.CanAdvance(transaction.StatusPending))
	assert.False(t, transaction.StatusSynced.CanAdvance(transaction.StatusCompleted))
	assert.False(t, transaction.StatusPending.CanAdvance(transaction.StatusCompleted))
}

func TestFromSession(t *testing.T) {
	item := catalog.Item{
		ID:      "oud-royal",
		Name:    "Royal Oud",
		NameAr:  "عود ملكي",
		Price:   decimal.NewFromInt(2500),
		Stock:   4,
		Unit:    "tola",
		TaxRate: decimal.NewFromInt(5),
	}

	s, err := sale.Reduce(sale.Empty(), sale.AddItem{Item: item})
	require.NoError(t, err)

	s, err = sale.Reduce(s, sale.SetCustomer{Customer: &customer.Customer{ID: "c9", Name: "Omar", DiscountPercentage: decimal.NewFromInt(10)}})
	require.NoError(t, err)

	s, err = sale.Reduce(s, sale.SetPaymentMethod{Method: sale.PaymentCash})
	require.NoError(t, err)

	s, err = sale.Reduce(s, sale.SetAmountTendered{Amount: decimal.NewFromInt(2400)})
	require.NoError(t, err)

	id := uuid.New()
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	tx := transaction.FromSession(id, "T1", at, transaction.StatusCompleted, s)

	assert.Equal(t, id, tx.ID)
	assert.Equal(t, "c9", tx.CustomerID)
	assert.Equal(t, "Omar", tx.CustomerName)
	require.Len(t, tx.Lines, 1)
	assert.Equal(t, "عود ملكي", tx.Lines[0].NameAr)
	assert.True(t, tx.Totals.GrandTotal.Equal(decimal.RequireFromString("2362.5")))
	assert.True(t, tx.Payment.Change.Equal(decimal.RequireFromString("37.5")))
	assert.Equal(t, map[string]int{"oud-royal": 1}, tx.Quantities())
}

func TestSummarize(t *testing.T) {
	day1 := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	day2 := day1.Add(24 * time.Hour)

	txs := []*transaction.Transaction{
		{CreatedAt: day2, Payment: transaction.Payment{Method: sale.PaymentCard}, Totals: transaction.Totals{GrandTotal: decimal.NewFromInt(50), Tax: decimal.RequireFromString("2.38")}},
		{CreatedAt: day1, Payment: transaction.Payment{Method: sale.PaymentCash}, Totals: transaction.Totals{GrandTotal: decimal.NewFromInt(105), Tax: decimal.NewFromInt(5)}},
		{CreatedAt: day1.Add(time.Hour), Payment: transaction.Payment{Method: sale.PaymentCash}, Totals: transaction.Totals{GrandTotal: decimal.NewFromInt(210), Tax: decimal.NewFromInt(10)}},
	}

	got := transaction.Summarize(txs, time.UTC)
	require.Len(t, got, 2)

	assert.Equal(t, 2, got[0].Count)
	assert.True(t, got[0].Total.Equal(decimal.NewFromInt(315)))
	assert.True(t, got[0].ByMethod[sale.PaymentCash].Equal(decimal.NewFromInt(315)))
	assert.True(t, got[0].Tax.Equal(decimal.NewFromInt(15)))
	assert.Equal(t, 1, got[1].Count)
	assert.True(t, got[1].ByMethod[sale.PaymentCard].Equal(decimal.NewFromInt(50)))
}
