package ledger_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appledger "github.com/jhoicas/stock-ledger-api/internal/application/ledger"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	domledger "github.com/jhoicas/stock-ledger-api/internal/domain/ledger"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria
//
// memStore emula la base: log de movimientos ordenado por seq y tabla de
// balances por (producto, ubicación). El TxRunner fake ejecuta fn con repos
// atados al mismo store; los casos de rechazo validan antes de escribir, así
// que no hace falta emular rollback.
// ──────────────────────────────────────────────────────────────────────────────

type memStore struct {
	products  map[string]*entity.Product
	locations map[string]*entity.Location
	movements []*entity.Movement
	balances  map[domledger.BalanceKey]decimal.Decimal
	nextSeq   int64
}

func newMemStore() *memStore {
	return &memStore{
		products:  make(map[string]*entity.Product),
		locations: make(map[string]*entity.Location),
		balances:  make(map[domledger.BalanceKey]decimal.Decimal),
	}
}

type memProductRepo struct{ s *memStore }

func (r *memProductRepo) Create(p *entity.Product) error {
	r.s.products[p.ID] = p
	return nil
}
func (r *memProductRepo) GetByID(id string) (*entity.Product, error) { return r.s.products[id], nil }
func (r *memProductRepo) Update(p *entity.Product) error {
	r.s.products[p.ID] = p
	return nil
}
func (r *memProductRepo) List(limit, offset int) ([]*entity.Product, error) { return nil, nil }
func (r *memProductRepo) Delete(id string) error {
	delete(r.s.products, id)
	return nil
}

type memLocationRepo struct{ s *memStore }

func (r *memLocationRepo) Create(l *entity.Location) error {
	r.s.locations[l.ID] = l
	return nil
}
func (r *memLocationRepo) GetByID(id string) (*entity.Location, error) { return r.s.locations[id], nil }
func (r *memLocationRepo) Update(l *entity.Location) error {
	r.s.locations[l.ID] = l
	return nil
}
func (r *memLocationRepo) List(limit, offset int) ([]*entity.Location, error) { return nil, nil }
func (r *memLocationRepo) Delete(id string) error {
	delete(r.s.locations, id)
	return nil
}

type memMovementRepo struct{ s *memStore }

func (r *memMovementRepo) Create(m *entity.Movement) error {
	r.s.nextSeq++
	m.Seq = r.s.nextSeq
	r.s.movements = append(r.s.movements, m)
	return nil
}

func (r *memMovementRepo) GetByID(id string) (*entity.Movement, error) {
	for _, m := range r.s.movements {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, nil
}

func (r *memMovementRepo) List(filter repository.MovementFilter) ([]*entity.Movement, error) {
	out := make([]*entity.Movement, 0, len(r.s.movements))
	for _, m := range r.s.movements {
		if filter.ProductID != "" && m.ProductID != filter.ProductID {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (r *memMovementRepo) Delete(id string) error {
	for i, m := range r.s.movements {
		if m.ID == id {
			r.s.movements = append(r.s.movements[:i], r.s.movements[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *memMovementRepo) DeleteByProduct(productID string) error {
	kept := r.s.movements[:0]
	for _, m := range r.s.movements {
		if m.ProductID != productID {
			kept = append(kept, m)
		}
	}
	r.s.movements = kept
	return nil
}

func (r *memMovementRepo) ExistsForLocation(locationID string) (bool, error) {
	for _, m := range r.s.movements {
		if (m.FromLocation != nil && *m.FromLocation == locationID) ||
			(m.ToLocation != nil && *m.ToLocation == locationID) {
			return true, nil
		}
	}
	return false, nil
}

type memBalanceRepo struct{ s *memStore }

func (r *memBalanceRepo) Get(productID, locationID string) (*entity.Balance, error) {
	q := r.s.balances[domledger.BalanceKey{ProductID: productID, LocationID: locationID}]
	return &entity.Balance{ProductID: productID, LocationID: locationID, Quantity: q}, nil
}

func (r *memBalanceRepo) GetForUpdate(productID, locationID string) (*entity.Balance, error) {
	return r.Get(productID, locationID)
}

func (r *memBalanceRepo) ApplyDelta(productID, locationID string, delta decimal.Decimal) error {
	k := domledger.BalanceKey{ProductID: productID, LocationID: locationID}
	r.s.balances[k] = r.s.balances[k].Add(delta)
	return nil
}

func (r *memBalanceRepo) ListByProduct(productID string) ([]*entity.Balance, error) {
	var out []*entity.Balance
	for k, q := range r.s.balances {
		if k.ProductID == productID {
			out = append(out, &entity.Balance{ProductID: k.ProductID, LocationID: k.LocationID, Quantity: q})
		}
	}
	return out, nil
}

func (r *memBalanceRepo) DeleteByProduct(productID string) error {
	for k := range r.s.balances {
		if k.ProductID == productID {
			delete(r.s.balances, k)
		}
	}
	return nil
}

// lockingBalanceRepo envuelve memBalanceRepo e invoca beforeLock una única vez
// antes del primer GetForUpdate: emula al débito rival que toma el lock de la
// fila primero y confirma mientras este caller espera.
type lockingBalanceRepo struct {
	*memBalanceRepo
	beforeLock func()
	fired      bool
}

func (r *lockingBalanceRepo) GetForUpdate(productID, locationID string) (*entity.Balance, error) {
	if !r.fired && r.beforeLock != nil {
		r.fired = true
		r.beforeLock()
	}
	return r.memBalanceRepo.GetForUpdate(productID, locationID)
}

type memTxRunner struct{ s *memStore }

func (tr *memTxRunner) Run(_ context.Context, fn func(
	movRepo repository.MovementRepository,
	balanceRepo repository.BalanceRepository,
	productRepo repository.ProductRepository,
	locationRepo repository.LocationRepository,
) error) error {
	return fn(
		&memMovementRepo{s: tr.s},
		&memBalanceRepo{s: tr.s},
		&memProductRepo{s: tr.s},
		&memLocationRepo{s: tr.s},
	)
}

// lockingTxRunner como memTxRunner pero con un BalanceRepository inyectado
// (para instrumentar GetForUpdate en los tests de contención).
type lockingTxRunner struct {
	s       *memStore
	balance repository.BalanceRepository
}

func (tr *lockingTxRunner) Run(_ context.Context, fn func(
	movRepo repository.MovementRepository,
	balanceRepo repository.BalanceRepository,
	productRepo repository.ProductRepository,
	locationRepo repository.LocationRepository,
) error) error {
	return fn(
		&memMovementRepo{s: tr.s},
		tr.balance,
		&memProductRepo{s: tr.s},
		&memLocationRepo{s: tr.s},
	)
}

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

const testUserID = "00000000-0000-0000-0000-000000000001"

func strPtr(s string) *string { return &s }

func buildUseCase(t *testing.T) (*appledger.MovementUseCase, *memStore) {
	t.Helper()
	s := newMemStore()
	uc := appledger.NewMovementUseCase(
		&memTxRunner{s: s},
		&memProductRepo{s: s},
		&memLocationRepo{s: s},
		&memMovementRepo{s: s},
		&memBalanceRepo{s: s},
	)
	return uc, s
}

// seedCatalog registra un producto y las ubicaciones A y B.
func seedCatalog(t *testing.T, s *memStore) {
	t.Helper()
	now := time.Now()
	s.products["p1"] = &entity.Product{ID: "p1", Name: "Tornillo M4", CreatedAt: now, UpdatedAt: now}
	s.locations["A"] = &entity.Location{ID: "A", Name: "Bodega A", CreatedAt: now, UpdatedAt: now}
	s.locations["B"] = &entity.Location{ID: "B", Name: "Bodega B", CreatedAt: now, UpdatedAt: now}
}

// balanceOf devuelve el balance neto del store para (producto, ubicación).
func balanceOf(s *memStore, productID, locationID string) decimal.Decimal {
	return s.balances[domledger.BalanceKey{ProductID: productID, LocationID: locationID}]
}

// assertOracle verifica que la tabla de balances coincide con el plegado puro
// del log de movimientos (sin contar pares en cero).
func assertOracle(t *testing.T, s *memStore) {
	t.Helper()
	expected := domledger.Replay(s.movements)
	for k, q := range s.balances {
		if q.IsZero() {
			continue
		}
		assert.True(t, expected[k].Equal(q),
			"balance de %v difiere del plegado del log: tabla=%s plegado=%s", k, q, expected[k])
	}
	for k, q := range expected {
		assert.True(t, balanceOf(s, k.ProductID, k.LocationID).Equal(q),
			"el plegado tiene %v=%s pero la tabla no lo refleja", k, q)
	}
}

func in(product, to string, qty int64) appledger.MovementInputDTO {
	return appledger.MovementInputDTO{
		UserID:     testUserID,
		ProductID:  product,
		ToLocation: strPtr(to),
		Quantity:   decimal.NewFromInt(qty),
	}
}

func transfer(product, from, to string, qty int64) appledger.MovementInputDTO {
	return appledger.MovementInputDTO{
		UserID:       testUserID,
		ProductID:    product,
		FromLocation: strPtr(from),
		ToLocation:   strPtr(to),
		Quantity:     decimal.NewFromInt(qty),
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// CreateMovement
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateMovement_EntradaExterna(t *testing.T) {
	uc, s := buildUseCase(t)
	seedCatalog(t, s)

	mov, err := uc.CreateMovement(context.Background(), in("p1", "A", 10))
	require.NoError(t, err)

	assert.Equal(t, entity.MovementKindIN, mov.Kind, "entrada externa debe clasificarse como IN")
	assert.NotEmpty(t, mov.ID, "el servidor debe asignar el ID")
	assert.Equal(t, int64(1), mov.Seq)
	assert.True(t, decimal.NewFromInt(10).Equal(balanceOf(s, "p1", "A")))
	assertOracle(t, s)
}

func TestCreateMovement_Traslado(t *testing.T) {
	uc, s := buildUseCase(t)
	seedCatalog(t, s)

	_, err := uc.CreateMovement(context.Background(), in("p1", "A", 10))
	require.NoError(t, err)

	mov, err := uc.CreateMovement(context.Background(), transfer("p1", "A", "B", 4))
	require.NoError(t, err)

	assert.Equal(t, entity.MovementKindTRANSFER, mov.Kind)
	assert.True(t, decimal.NewFromInt(6).Equal(balanceOf(s, "p1", "A")), "A debe quedar con 6")
	assert.True(t, decimal.NewFromInt(4).Equal(balanceOf(s, "p1", "B")), "B debe quedar con 4")

	// El traslado no cambia el total del producto.
	total := domledger.ProductTotal(domledger.Replay(s.movements), "p1")
	assert.True(t, decimal.NewFromInt(10).Equal(total),
		"los traslados internos son neutros a nivel de producto")
	assertOracle(t, s)
}

func TestCreateMovement_SalidaExterna(t *testing.T) {
	uc, s := buildUseCase(t)
	seedCatalog(t, s)

	_, err := uc.CreateMovement(context.Background(), in("p1", "A", 10))
	require.NoError(t, err)

	mov, err := uc.CreateMovement(context.Background(), appledger.MovementInputDTO{
		UserID:       testUserID,
		ProductID:    "p1",
		FromLocation: strPtr("A"),
		Quantity:     decimal.NewFromInt(3),
	})
	require.NoError(t, err)

	assert.Equal(t, entity.MovementKindOUT, mov.Kind)
	assert.True(t, decimal.NewFromInt(7).Equal(balanceOf(s, "p1", "A")))
	assertOracle(t, s)
}

// Cadenas vacías en from/to equivalen a null (el frontend manda "" por selects sin valor).
func TestCreateMovement_CadenaVaciaEsNull(t *testing.T) {
	uc, s := buildUseCase(t)
	seedCatalog(t, s)

	mov, err := uc.CreateMovement(context.Background(), appledger.MovementInputDTO{
		UserID:       testUserID,
		ProductID:    "p1",
		FromLocation: strPtr(""),
		ToLocation:   strPtr("A"),
		Quantity:     decimal.NewFromInt(5),
	})
	require.NoError(t, err)

	assert.Nil(t, mov.FromLocation)
	assert.Equal(t, entity.MovementKindIN, mov.Kind)
}

func TestCreateMovement_StockInsuficiente(t *testing.T) {
	uc, s := buildUseCase(t)
	seedCatalog(t, s)

	_, err := uc.CreateMovement(context.Background(), in("p1", "A", 10))
	require.NoError(t, err)

	_, err = uc.CreateMovement(context.Background(), transfer("p1", "A", "B", 11))
	assert.ErrorIs(t, err, domain.ErrInsufficientStock,
		"trasladar 11 con stock 10 debe rechazarse")

	// El rechazo no deja rastro: ni movimiento ni cambio de balance.
	assert.Len(t, s.movements, 1)
	assert.True(t, decimal.NewFromInt(10).Equal(balanceOf(s, "p1", "A")))
	assert.True(t, balanceOf(s, "p1", "B").IsZero())
	assertOracle(t, s)
}

// Dos débitos en carrera sobre el mismo par (producto, ubicación) con stock para
// uno solo: el que toma el lock de la fila primero confirma, el otro lee el balance
// ya comprometido y falla con ErrInsufficientStock.
func TestCreateMovement_DebitosConcurrentes_SoloUnoGana(t *testing.T) {
	s := newMemStore()
	seedCatalog(t, s)

	rival := appledger.NewMovementUseCase(
		&memTxRunner{s: s},
		&memProductRepo{s: s},
		&memLocationRepo{s: s},
		&memMovementRepo{s: s},
		&memBalanceRepo{s: s},
	)
	locked := &lockingBalanceRepo{memBalanceRepo: &memBalanceRepo{s: s}}
	uc := appledger.NewMovementUseCase(
		&lockingTxRunner{s: s, balance: locked},
		&memProductRepo{s: s},
		&memLocationRepo{s: s},
		&memMovementRepo{s: s},
		&memBalanceRepo{s: s},
	)

	_, err := rival.CreateMovement(context.Background(), in("p1", "A", 10))
	require.NoError(t, err)

	// Mientras este débito espera el lock de (p1, A), el rival confirma el suyo.
	var rivalErr error
	locked.beforeLock = func() {
		_, rivalErr = rival.CreateMovement(context.Background(), transfer("p1", "A", "B", 6))
	}

	_, err = uc.CreateMovement(context.Background(), transfer("p1", "A", "B", 6))

	require.NoError(t, rivalErr, "el débito que tomó el lock primero debe confirmar")
	assert.ErrorIs(t, err, domain.ErrInsufficientStock,
		"el segundo débito ve el balance comprometido y exactamente uno gana")

	assert.Len(t, s.movements, 2, "solo la entrada y un traslado quedan en el log")
	assert.True(t, decimal.NewFromInt(4).Equal(balanceOf(s, "p1", "A")))
	assert.True(t, decimal.NewFromInt(6).Equal(balanceOf(s, "p1", "B")))
	assertOracle(t, s)
}

// Trasladar exactamente el stock disponible es válido (el piso es cero, no uno).
func TestCreateMovement_TrasladoExacto(t *testing.T) {
	uc, s := buildUseCase(t)
	seedCatalog(t, s)

	_, err := uc.CreateMovement(context.Background(), in("p1", "A", 10))
	require.NoError(t, err)

	_, err = uc.CreateMovement(context.Background(), transfer("p1", "A", "B", 10))
	require.NoError(t, err)

	assert.True(t, balanceOf(s, "p1", "A").IsZero())
	assert.True(t, decimal.NewFromInt(10).Equal(balanceOf(s, "p1", "B")))
	assertOracle(t, s)
}

func TestCreateMovement_Validaciones(t *testing.T) {
	cases := []struct {
		name    string
		input   appledger.MovementInputDTO
		wantErr error
	}{
		{
			name: "cantidad cero",
			input: appledger.MovementInputDTO{
				UserID: testUserID, ProductID: "p1",
				ToLocation: strPtr("A"), Quantity: decimal.Zero,
			},
			wantErr: domain.ErrInvalidQuantity,
		},
		{
			name: "cantidad negativa",
			input: appledger.MovementInputDTO{
				UserID: testUserID, ProductID: "p1",
				ToLocation: strPtr("A"), Quantity: decimal.NewFromInt(-5),
			},
			wantErr: domain.ErrInvalidQuantity,
		},
		{
			name: "cantidad no entera",
			input: appledger.MovementInputDTO{
				UserID: testUserID, ProductID: "p1",
				ToLocation: strPtr("A"), Quantity: decimal.RequireFromString("2.5"),
			},
			wantErr: domain.ErrInvalidQuantity,
		},
		{
			name: "origen y destino nulos",
			input: appledger.MovementInputDTO{
				UserID: testUserID, ProductID: "p1",
				Quantity: decimal.NewFromInt(1),
			},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name: "auto-traslado",
			input: appledger.MovementInputDTO{
				UserID: testUserID, ProductID: "p1",
				FromLocation: strPtr("A"), ToLocation: strPtr("A"),
				Quantity: decimal.NewFromInt(1),
			},
			wantErr: domain.ErrSelfTransfer,
		},
		{
			name: "producto desconocido",
			input: appledger.MovementInputDTO{
				UserID: testUserID, ProductID: "no-existe",
				ToLocation: strPtr("A"), Quantity: decimal.NewFromInt(1),
			},
			wantErr: domain.ErrUnknownProduct,
		},
		{
			name: "ubicación desconocida",
			input: appledger.MovementInputDTO{
				UserID: testUserID, ProductID: "p1",
				ToLocation: strPtr("no-existe"), Quantity: decimal.NewFromInt(1),
			},
			wantErr: domain.ErrUnknownLocation,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			uc, s := buildUseCase(t)
			seedCatalog(t, s)

			_, err := uc.CreateMovement(context.Background(), tc.input)
			assert.ErrorIs(t, err, tc.wantErr)
			assert.Empty(t, s.movements, "el rechazo no debe registrar ningún movimiento")
			assert.Empty(t, s.balances, "el rechazo no debe tocar balances")
		})
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// DeleteMovement
// ──────────────────────────────────────────────────────────────────────────────

func TestDeleteMovement_RevierteBalances(t *testing.T) {
	uc, s := buildUseCase(t)
	seedCatalog(t, s)

	_, err := uc.CreateMovement(context.Background(), in("p1", "A", 10))
	require.NoError(t, err)
	traslado, err := uc.CreateMovement(context.Background(), transfer("p1", "A", "B", 4))
	require.NoError(t, err)

	require.NoError(t, uc.DeleteMovement(context.Background(), traslado.ID))

	assert.True(t, decimal.NewFromInt(10).Equal(balanceOf(s, "p1", "A")),
		"borrar el traslado debe devolver A a 10")
	assert.True(t, balanceOf(s, "p1", "B").IsZero(), "B debe volver a cero")
	assert.Len(t, s.movements, 1, "solo debe quedar la entrada")
	assertOracle(t, s)
}

func TestDeleteMovement_NoExiste(t *testing.T) {
	uc, s := buildUseCase(t)
	seedCatalog(t, s)

	err := uc.DeleteMovement(context.Background(), "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, s.balances, "no debe haber efectos secundarios")
}

// La reversa del borrado se aplica sin piso: borrar la entrada que alimentó
// salidas posteriores deja el balance negativo en vez de bloquear el borrado.
func TestDeleteMovement_PuedeDejarNegativo(t *testing.T) {
	uc, s := buildUseCase(t)
	seedCatalog(t, s)

	entrada, err := uc.CreateMovement(context.Background(), in("p1", "A", 10))
	require.NoError(t, err)
	_, err = uc.CreateMovement(context.Background(), appledger.MovementInputDTO{
		UserID:       testUserID,
		ProductID:    "p1",
		FromLocation: strPtr("A"),
		Quantity:     decimal.NewFromInt(6),
	})
	require.NoError(t, err)

	require.NoError(t, uc.DeleteMovement(context.Background(), entrada.ID))

	assert.True(t, decimal.NewFromInt(-6).Equal(balanceOf(s, "p1", "A")),
		"la reversa no verifica piso: A queda en -6")
	assertOracle(t, s)
}

// ──────────────────────────────────────────────────────────────────────────────
// SeedInTx
// ──────────────────────────────────────────────────────────────────────────────

func TestSeedInTx_GeneraMovimientoSemilla(t *testing.T) {
	uc, s := buildUseCase(t)
	seedCatalog(t, s)

	product := &entity.Product{
		ID:            "p2",
		Name:          "Tuerca M4",
		TotalQuantity: decimal.NewFromInt(25),
		LocationID:    strPtr("A"),
	}
	s.products["p2"] = product

	err := uc.SeedInTx(&memMovementRepo{s: s}, &memBalanceRepo{s: s}, product, testUserID, time.Now())
	require.NoError(t, err)

	require.Len(t, s.movements, 1)
	seed := s.movements[0]
	assert.Equal(t, entity.MovementKindSEED, seed.Kind)
	assert.Nil(t, seed.FromLocation, "la semilla es una entrada externa")
	assert.Equal(t, "A", *seed.ToLocation)
	assert.Equal(t, testUserID, seed.CreatedBy)
	assert.True(t, decimal.NewFromInt(25).Equal(balanceOf(s, "p2", "A")))
	assertOracle(t, s)
}

func TestSeedInTx_SinUbicacionNoHaceNada(t *testing.T) {
	uc, s := buildUseCase(t)

	product := &entity.Product{ID: "p2", TotalQuantity: decimal.NewFromInt(25)}
	err := uc.SeedInTx(&memMovementRepo{s: s}, &memBalanceRepo{s: s}, product, testUserID, time.Now())
	require.NoError(t, err)

	assert.Empty(t, s.movements)
	assert.Empty(t, s.balances)
}

func TestSeedInTx_CantidadCeroNoHaceNada(t *testing.T) {
	uc, s := buildUseCase(t)

	product := &entity.Product{ID: "p2", TotalQuantity: decimal.Zero, LocationID: strPtr("A")}
	err := uc.SeedInTx(&memMovementRepo{s: s}, &memBalanceRepo{s: s}, product, testUserID, time.Now())
	require.NoError(t, err)

	assert.Empty(t, s.movements)
}

// ──────────────────────────────────────────────────────────────────────────────
// Orden de creación
// ──────────────────────────────────────────────────────────────────────────────

func TestListMovements_OrdenEstable(t *testing.T) {
	uc, s := buildUseCase(t)
	seedCatalog(t, s)

	for i := 1; i <= 3; i++ {
		_, err := uc.CreateMovement(context.Background(), in("p1", "A", int64(i)))
		require.NoError(t, err)
	}

	movs, err := uc.ListMovements(repository.MovementFilter{ProductID: "p1"})
	require.NoError(t, err)
	require.Len(t, movs, 3)
	for i, m := range movs {
		assert.Equal(t, int64(i+1), m.Seq, "seq debe reflejar el orden de creación")
	}
}
