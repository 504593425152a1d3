package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// MovementUseCase registra y borra movimientos del ledger de forma transaccional:
// valida, bloquea la fila de balance origen (SELECT FOR UPDATE), inserta/borra el
// movimiento y aplica el delta de balance en la misma transacción.
type MovementUseCase struct {
	txRunner     TxRunner
	productRepo  repository.ProductRepository
	locationRepo repository.LocationRepository
	movementRepo repository.MovementRepository
	balanceRepo  repository.BalanceRepository
}

// NewMovementUseCase construye el caso de uso.
func NewMovementUseCase(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	locationRepo repository.LocationRepository,
	movementRepo repository.MovementRepository,
	balanceRepo repository.BalanceRepository,
) *MovementUseCase {
	return &MovementUseCase{
		txRunner:     txRunner,
		productRepo:  productRepo,
		locationRepo: locationRepo,
		movementRepo: movementRepo,
		balanceRepo:  balanceRepo,
	}
}

// MovementInputDTO entrada para registrar un movimiento. From/To en nil significan
// entrada/salida externa; al menos uno debe venir.
type MovementInputDTO struct {
	UserID       string
	ProductID    string
	FromLocation *string
	ToLocation   *string
	Quantity     decimal.Decimal
}

// normalizeLoc convierte cadenas vacías en nil (el frontend manda "" por un select sin valor).
func normalizeLoc(loc *string) *string {
	if loc == nil || *loc == "" {
		return nil
	}
	return loc
}

// deriveKind clasifica el movimiento según origen/destino.
func deriveKind(from, to *string) string {
	switch {
	case from != nil && to != nil:
		return entity.MovementKindTRANSFER
	case from == nil:
		return entity.MovementKindIN
	default:
		return entity.MovementKindOUT
	}
}

// validate aplica las reglas de la capa de validación. Si falla, no se escribe nada:
// ni fila de movimiento ni cambio de balance.
func (uc *MovementUseCase) validate(in *MovementInputDTO) error {
	if !in.Quantity.IsInteger() || !in.Quantity.GreaterThan(decimal.Zero) {
		return domain.ErrInvalidQuantity
	}
	in.FromLocation = normalizeLoc(in.FromLocation)
	in.ToLocation = normalizeLoc(in.ToLocation)
	if in.FromLocation == nil && in.ToLocation == nil {
		return domain.ErrInvalidInput
	}
	if in.FromLocation != nil && in.ToLocation != nil && *in.FromLocation == *in.ToLocation {
		return domain.ErrSelfTransfer
	}
	product, err := uc.productRepo.GetByID(in.ProductID)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.ErrUnknownProduct
	}
	for _, loc := range []*string{in.FromLocation, in.ToLocation} {
		if loc == nil {
			continue
		}
		l, err := uc.locationRepo.GetByID(*loc)
		if err != nil {
			return err
		}
		if l == nil {
			return domain.ErrUnknownLocation
		}
	}
	return nil
}

// CreateMovement valida y registra un movimiento, aplicando su efecto de balance en la
// misma transacción. Si el origen no es nil, bloquea la fila de balance y rechaza con
// ErrInsufficientStock cuando el stock disponible no cubre la cantidad: los balances
// negativos no están permitidos en la creación.
func (uc *MovementUseCase) CreateMovement(ctx context.Context, input MovementInputDTO) (*entity.Movement, error) {
	if err := uc.validate(&input); err != nil {
		return nil, err
	}

	now := time.Now()
	mov := &entity.Movement{
		ID:           uuid.New().String(),
		ProductID:    input.ProductID,
		FromLocation: input.FromLocation,
		ToLocation:   input.ToLocation,
		Quantity:     input.Quantity,
		Kind:         deriveKind(input.FromLocation, input.ToLocation),
		CreatedAt:    now,
		CreatedBy:    input.UserID,
	}

	err := uc.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		balanceRepo repository.BalanceRepository,
		_ repository.ProductRepository,
		_ repository.LocationRepository,
	) error {
		return applyMovement(movRepo, balanceRepo, mov)
	})
	if err != nil {
		return nil, err
	}
	return mov, nil
}

// applyMovement ejecuta el par indivisible insert-movimiento + delta-balance usando
// los repositorios de la transacción del caller. Lo reutiliza el alta de productos
// para el movimiento semilla (misma tx que el insert del producto).
func applyMovement(
	movRepo repository.MovementRepository,
	balanceRepo repository.BalanceRepository,
	mov *entity.Movement,
) error {
	if mov.FromLocation != nil {
		// Bloquea la fila de balance origen: dos débitos concurrentes sobre el
		// mismo par se serializan aquí y solo uno puede agotar el stock.
		balance, err := balanceRepo.GetForUpdate(mov.ProductID, *mov.FromLocation)
		if err != nil {
			return err
		}
		if balance.Quantity.LessThan(mov.Quantity) {
			return domain.ErrInsufficientStock
		}
		if err := balanceRepo.ApplyDelta(mov.ProductID, *mov.FromLocation, mov.Quantity.Neg()); err != nil {
			return err
		}
	}
	if mov.ToLocation != nil {
		if err := balanceRepo.ApplyDelta(mov.ProductID, *mov.ToLocation, mov.Quantity); err != nil {
			return err
		}
	}
	return movRepo.Create(mov)
}

// SeedInTx registra el movimiento semilla de un producto recién creado usando los
// repositorios de la transacción del caller (el alta del producto). No hace nada si
// el producto no tiene ubicación inicial o su cantidad declarada es cero.
func (uc *MovementUseCase) SeedInTx(
	movRepo repository.MovementRepository,
	balanceRepo repository.BalanceRepository,
	product *entity.Product,
	userID string,
	now time.Time,
) error {
	if product.LocationID == nil || !product.TotalQuantity.GreaterThan(decimal.Zero) {
		return nil
	}
	seed := &entity.Movement{
		ID:           uuid.New().String(),
		ProductID:    product.ID,
		FromLocation: nil,
		ToLocation:   product.LocationID,
		Quantity:     product.TotalQuantity,
		Kind:         entity.MovementKindSEED,
		CreatedAt:    now,
		CreatedBy:    userID,
	}
	return applyMovement(movRepo, balanceRepo, seed)
}

// DeleteMovement borra un movimiento (hard delete) y revierte exactamente su
// contribución al balance en la misma transacción. La reversa se aplica sin
// verificar piso: bloquear el borrado dejaría ledgers incorregibles. ErrNotFound
// si el id no existe, sin efectos secundarios.
func (uc *MovementUseCase) DeleteMovement(ctx context.Context, id string) error {
	return uc.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		balanceRepo repository.BalanceRepository,
		_ repository.ProductRepository,
		_ repository.LocationRepository,
	) error {
		mov, err := movRepo.GetByID(id)
		if err != nil {
			return err
		}
		if mov == nil {
			return domain.ErrNotFound
		}
		if mov.ToLocation != nil {
			if err := balanceRepo.ApplyDelta(mov.ProductID, *mov.ToLocation, mov.Quantity.Neg()); err != nil {
				return err
			}
		}
		if mov.FromLocation != nil {
			if err := balanceRepo.ApplyDelta(mov.ProductID, *mov.FromLocation, mov.Quantity); err != nil {
				return err
			}
		}
		return movRepo.Delete(mov.ID)
	})
}

// GetMovement obtiene un movimiento por ID (nil si no existe).
func (uc *MovementUseCase) GetMovement(id string) (*entity.Movement, error) {
	return uc.movementRepo.GetByID(id)
}

// ListMovements lista movimientos en orden estable de creación.
func (uc *MovementUseCase) ListMovements(filter repository.MovementFilter) ([]*entity.Movement, error) {
	return uc.movementRepo.List(filter)
}

// GetBalance devuelve el balance actual de un producto en una ubicación.
func (uc *MovementUseCase) GetBalance(productID, locationID string) (*entity.Balance, error) {
	return uc.balanceRepo.Get(productID, locationID)
}

// ListBalances devuelve los balances de un producto en todas las ubicaciones.
func (uc *MovementUseCase) ListBalances(productID string) ([]*entity.Balance, error) {
	return uc.balanceRepo.ListByProduct(productID)
}
