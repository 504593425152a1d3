package usecase

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	appledger "github.com/jhoicas/stock-ledger-api/internal/application/ledger"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// ProductUseCase casos de uso CRUD para productos. El alta es la regla de negocio más
// importante del sistema: producto con ubicación inicial y cantidad > 0 genera el
// movimiento semilla dentro de la misma transacción que el insert del producto —
// sin eso todo producto nuevo aparecería con stock cero en todas partes.
type ProductUseCase struct {
	txRunner     appledger.TxRunner
	ledgerUC     *appledger.MovementUseCase
	productRepo  repository.ProductRepository
	locationRepo repository.LocationRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(
	txRunner appledger.TxRunner,
	ledgerUC *appledger.MovementUseCase,
	productRepo repository.ProductRepository,
	locationRepo repository.LocationRepository,
) *ProductUseCase {
	return &ProductUseCase{
		txRunner:     txRunner,
		ledgerUC:     ledgerUC,
		productRepo:  productRepo,
		locationRepo: locationRepo,
	}
}

// Create crea un producto y, si corresponde, su movimiento semilla (kind SEED,
// origen null, destino la ubicación inicial, qty = total_quantity) en la misma
// transacción. ErrDuplicate si el ID ya existe.
func (uc *ProductUseCase) Create(ctx context.Context, userID string, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if !in.TotalQuantity.IsInteger() || in.TotalQuantity.IsNegative() {
		return nil, domain.ErrInvalidQuantity
	}
	existing, err := uc.productRepo.GetByID(in.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	locationID := in.LocationID
	if locationID != nil && *locationID == "" {
		locationID = nil
	}
	if locationID != nil {
		location, err := uc.locationRepo.GetByID(*locationID)
		if err != nil {
			return nil, err
		}
		if location == nil {
			return nil, domain.ErrUnknownLocation
		}
	}

	now := time.Now()
	product := &entity.Product{
		ID:            in.ID,
		Name:          in.Name,
		Description:   in.Description,
		TotalQuantity: in.TotalQuantity,
		LocationID:    locationID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err = uc.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		balanceRepo repository.BalanceRepository,
		productRepo repository.ProductRepository,
		_ repository.LocationRepository,
	) error {
		if err := productRepo.Create(product); err != nil {
			return err
		}
		return uc.ledgerUC.SeedInTx(movRepo, balanceRepo, product, userID, now)
	})
	if err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// GetByID obtiene un producto por ID (nil si no existe).
func (uc *ProductUseCase) GetByID(id string) (*dto.ProductResponse, error) {
	product, err := uc.productRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, nil
	}
	return toProductResponse(product), nil
}

// Update actualiza nombre/descripción/cantidad declarada/ubicación inicial.
// Nunca re-genera la semilla: la cantidad declarada es informativa después del alta.
func (uc *ProductUseCase) Update(id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.productRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, nil
	}
	if in.Name != nil {
		product.Name = *in.Name
	}
	if in.Description != nil {
		product.Description = *in.Description
	}
	if in.TotalQuantity != nil {
		if !in.TotalQuantity.IsInteger() || in.TotalQuantity.IsNegative() {
			return nil, domain.ErrInvalidQuantity
		}
		product.TotalQuantity = *in.TotalQuantity
	}
	if in.LocationID != nil {
		if *in.LocationID == "" {
			product.LocationID = nil
		} else {
			location, err := uc.locationRepo.GetByID(*in.LocationID)
			if err != nil {
				return nil, err
			}
			if location == nil {
				return nil, domain.ErrUnknownLocation
			}
			product.LocationID = in.LocationID
		}
	}
	product.UpdatedAt = time.Now()
	if err := uc.productRepo.Update(product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// List lista productos con paginación.
func (uc *ProductUseCase) List(limit, offset int) (*dto.ProductListResponse, error) {
	list, err := uc.productRepo.List(limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

// Delete elimina un producto en cascada: sus movimientos, sus balances y el producto,
// todo en una transacción. El ledger del producto desaparece con él.
func (uc *ProductUseCase) Delete(ctx context.Context, id string) error {
	return uc.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		balanceRepo repository.BalanceRepository,
		productRepo repository.ProductRepository,
		_ repository.LocationRepository,
	) error {
		product, err := productRepo.GetByID(id)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrNotFound
		}
		if err := movRepo.DeleteByProduct(id); err != nil {
			return err
		}
		if err := balanceRepo.DeleteByProduct(id); err != nil {
			return err
		}
		return productRepo.Delete(id)
	})
}

// ListBalances devuelve los balances por ubicación de un producto.
func (uc *ProductUseCase) ListBalances(id string) ([]dto.ProductBalanceDTO, error) {
	product, err := uc.productRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	balances, err := uc.ledgerUC.ListBalances(id)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductBalanceDTO, 0, len(balances))
	for _, b := range balances {
		items = append(items, dto.ProductBalanceDTO{
			LocationID: b.LocationID,
			Quantity:   b.Quantity,
			UpdatedAt:  b.UpdatedAt,
		})
	}
	return items, nil
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	return &dto.ProductResponse{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		TotalQuantity: p.TotalQuantity,
		LocationID:    p.LocationID,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}
