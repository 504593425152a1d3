package usecase_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/application/usecase"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

func buildLocationUseCase(t *testing.T) (*usecase.LocationUseCase, *store) {
	t.Helper()
	s := newStore()
	uc := usecase.NewLocationUseCase(&fakeTxRunner{s: s}, &fakeLocationRepo{s: s})
	return uc, s
}

// movementTo fabrica una entrada externa hacia la ubicación dada.
func movementTo(productID, locationID string) *entity.Movement {
	return &entity.Movement{
		ID:         uuid.New().String(),
		ProductID:  productID,
		ToLocation: &locationID,
		Quantity:   decimal.NewFromInt(5),
		Kind:       entity.MovementKindIN,
	}
}

func TestLocationCreate_Duplicada(t *testing.T) {
	uc, _ := buildLocationUseCase(t)

	_, err := uc.Create(dto.CreateLocationRequest{ID: "A", Name: "Bodega A"})
	require.NoError(t, err)

	_, err = uc.Create(dto.CreateLocationRequest{ID: "A", Name: "Otra bodega"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

// Una ubicación referenciada por movimientos no puede borrarse: quedaría
// huérfano el historial.
func TestLocationDelete_ConMovimientos_Bloqueado(t *testing.T) {
	uc, s := buildLocationUseCase(t)
	_, err := uc.Create(dto.CreateLocationRequest{ID: "A", Name: "Bodega A"})
	require.NoError(t, err)

	require.NoError(t, (&fakeMovementRepo{s: s}).Create(movementTo("p1", "A")))

	err = uc.Delete(context.Background(), "A")
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, ok := s.locations["A"]
	assert.True(t, ok, "la ubicación debe seguir existiendo")
}

func TestLocationDelete_SinMovimientos(t *testing.T) {
	uc, s := buildLocationUseCase(t)
	_, err := uc.Create(dto.CreateLocationRequest{ID: "A", Name: "Bodega A"})
	require.NoError(t, err)

	require.NoError(t, uc.Delete(context.Background(), "A"))
	assert.Empty(t, s.locations)
}

func TestLocationDelete_NoExiste(t *testing.T) {
	uc, _ := buildLocationUseCase(t)
	err := uc.Delete(context.Background(), "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLocationDelete_TrasBorrarMovimientos(t *testing.T) {
	uc, s := buildLocationUseCase(t)
	_, err := uc.Create(dto.CreateLocationRequest{ID: "A", Name: "Bodega A"})
	require.NoError(t, err)

	movRepo := &fakeMovementRepo{s: s}
	mov := movementTo("p1", "A")
	require.NoError(t, movRepo.Create(mov))

	assert.ErrorIs(t, uc.Delete(context.Background(), "A"), domain.ErrConflict)

	// Al desaparecer la última referencia, el borrado procede.
	require.NoError(t, movRepo.Delete(mov.ID))
	require.NoError(t, uc.Delete(context.Background(), "A"))
	assert.Empty(t, s.locations)
}

// delayedMovementTxRunner inserta un movimiento justo antes de ejecutar fn:
// emula un movimiento que confirma entre la petición de borrado y su transacción.
type delayedMovementTxRunner struct {
	s   *store
	mov *entity.Movement
}

func (tr *delayedMovementTxRunner) Run(_ context.Context, fn func(
	movRepo repository.MovementRepository,
	balanceRepo repository.BalanceRepository,
	productRepo repository.ProductRepository,
	locationRepo repository.LocationRepository,
) error) error {
	if tr.mov != nil {
		if err := (&fakeMovementRepo{s: tr.s}).Create(tr.mov); err != nil {
			return err
		}
		tr.mov = nil
	}
	return fn(
		&fakeMovementRepo{s: tr.s},
		&fakeBalanceRepo{s: tr.s},
		&fakeProductRepo{s: tr.s},
		&fakeLocationRepo{s: tr.s},
	)
}

// La verificación de referencias corre dentro de la misma transacción que el
// borrado: un movimiento que confirma en medio bloquea el borrado en vez de
// quedar con la ubicación huérfana.
func TestLocationDelete_MovimientoEnCarrera_Bloqueado(t *testing.T) {
	s := newStore()
	uc := usecase.NewLocationUseCase(
		&delayedMovementTxRunner{s: s, mov: movementTo("p1", "A")},
		&fakeLocationRepo{s: s},
	)
	require.NoError(t, (&fakeLocationRepo{s: s}).Create(&entity.Location{ID: "A", Name: "Bodega A"}))

	err := uc.Delete(context.Background(), "A")
	assert.ErrorIs(t, err, domain.ErrConflict,
		"el movimiento que confirmó primero debe bloquear el borrado")

	_, ok := s.locations["A"]
	assert.True(t, ok, "la ubicación debe seguir existiendo")
	assert.Len(t, s.movements, 1, "el historial queda íntegro, sin huérfanos")
}
