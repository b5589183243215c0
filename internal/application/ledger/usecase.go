package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Compuestos-api/internal/application/dto"
	"github.com/jhoicas/Compuestos-api/internal/domain"
	"github.com/jhoicas/Compuestos-api/internal/domain/entity"
	domledger "github.com/jhoicas/Compuestos-api/internal/domain/ledger"
	"github.com/jhoicas/Compuestos-api/internal/domain/repository"
)

// lockTimeout cota superior para adquirir el bloqueo de fila de un material.
// Ninguna operación del libro mayor espera indefinidamente.
const lockTimeout = 5 * time.Second

// LedgerUseCase es el motor del libro mayor de materiales: único mutador del
// balance. Cada Record corre en una transacción con bloqueo de fila
// (SELECT FOR UPDATE), serializando las transacciones concurrentes sobre un
// mismo material; materiales distintos proceden en paralelo.
type LedgerUseCase struct {
	txRunner  TxRunner
	materials repository.MaterialRepository
	entries   repository.LedgerEntryRepository
	formulas  repository.FormulaRepository
	book      BookExporter
}

// NewLedgerUseCase construye el caso de uso.
func NewLedgerUseCase(
	txRunner TxRunner,
	materials repository.MaterialRepository,
	entries repository.LedgerEntryRepository,
	formulas repository.FormulaRepository,
	book BookExporter,
) *LedgerUseCase {
	return &LedgerUseCase{
		txRunner:  txRunner,
		materials: materials,
		entries:   entries,
		formulas:  formulas,
		book:      book,
	}
}

// CreateMaterial alta administrativa de un material. Con openingBalance
// positivo siembra el historial con un asiento "Opening stock"; así el
// invariante balance == cola del historial se cumple desde el primer día.
func (uc *LedgerUseCase) CreateMaterial(ctx context.Context, in dto.CreateMaterialRequest) (*dto.MaterialResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.OpeningBalance.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	existing, err := uc.materials.GetByName(name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	unit := in.Unit
	if unit == "" {
		unit = "kg"
	}
	now := time.Now()
	material := &entity.Material{
		ID:        uuid.New().String(),
		Name:      name,
		Category:  in.Category,
		Unit:      unit,
		Balance:   decimal.Zero,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = uc.txRunner.Run(ctx, func(matRepo repository.MaterialRepository, entryRepo repository.LedgerEntryRepository) error {
		if err := matRepo.Create(material); err != nil {
			return err
		}
		if in.OpeningBalance.IsPositive() {
			entry := &entity.LedgerEntry{
				ID:          uuid.New().String(),
				MaterialID:  material.ID,
				Date:        now,
				Particulars: "Opening stock",
				Inward:      in.OpeningBalance,
				Outward:     decimal.Zero,
				Balance:     in.OpeningBalance,
				CreatedAt:   now,
			}
			if err := entryRepo.Append(entry); err != nil {
				return err
			}
			if err := matRepo.UpdateBalance(material.ID, entry.Balance); err != nil {
				return err
			}
			material.Balance = entry.Balance
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toMaterialResponse(material), nil
}

// Record registra una transacción del libro mayor: único camino para mover el
// balance. Valida inward/outward, bloquea la fila del material, encadena el
// balance desde la cola del historial y confirma asiento + balance cacheado
// en una sola transacción.
func (uc *LedgerUseCase) Record(ctx context.Context, materialID string, in dto.RecordTransactionRequest) (*dto.LedgerEntryResponse, error) {
	if strings.TrimSpace(in.Particulars) == "" {
		return nil, domain.ErrInvalidTransaction
	}
	if err := domledger.ValidateMovement(in.Inward, in.Outward); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, lockTimeout)
	defer cancel()

	var entry *entity.LedgerEntry
	err := uc.txRunner.Run(ctx, func(matRepo repository.MaterialRepository, entryRepo repository.LedgerEntryRepository) error {
		material, err := matRepo.GetForUpdate(materialID)
		if err != nil {
			return err
		}
		if material == nil {
			return domain.ErrNotFound
		}
		now := time.Now()
		entry = &entity.LedgerEntry{
			ID:          uuid.New().String(),
			MaterialID:  material.ID,
			Date:        now,
			Particulars: in.Particulars,
			Inward:      in.Inward,
			Outward:     in.Outward,
			Balance:     domledger.NextBalance(material.Balance, in.Inward, in.Outward),
			Remarks:     in.Remarks,
			CreatedAt:   now,
		}
		if err := entryRepo.Append(entry); err != nil {
			return err
		}
		return matRepo.UpdateBalance(material.ID, entry.Balance)
	})
	if err != nil {
		// Un timeout esperando el bloqueo de fila no debe colgar ni
		// filtrarse como error interno genérico.
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %v", domain.ErrLedgerFailure, err)
		}
		return nil, err
	}
	return toEntryResponse(entry), nil
}

// GetBalance devuelve el balance actual de un material.
func (uc *LedgerUseCase) GetBalance(materialID string) (decimal.Decimal, error) {
	material, err := uc.materials.GetByID(materialID)
	if err != nil {
		return decimal.Zero, err
	}
	if material == nil {
		return decimal.Zero, domain.ErrNotFound
	}
	return material.Balance, nil
}

// GetMaterial devuelve un material con su historial completo.
func (uc *LedgerUseCase) GetMaterial(materialID string) (*dto.MaterialWithHistoryResponse, error) {
	material, err := uc.materials.GetByID(materialID)
	if err != nil {
		return nil, err
	}
	if material == nil {
		return nil, domain.ErrNotFound
	}
	history, err := uc.entries.ListByMaterial(materialID)
	if err != nil {
		return nil, err
	}
	logs := make([]dto.LedgerEntryResponse, 0, len(history))
	for i := range history {
		logs = append(logs, *toEntryResponse(&history[i]))
	}
	return &dto.MaterialWithHistoryResponse{
		MaterialResponse: *toMaterialResponse(material),
		Logs:             logs,
	}, nil
}

// GetHistory devuelve el historial de un material en orden de inserción.
func (uc *LedgerUseCase) GetHistory(materialID string) ([]entity.LedgerEntry, error) {
	material, err := uc.materials.GetByID(materialID)
	if err != nil {
		return nil, err
	}
	if material == nil {
		return nil, domain.ErrNotFound
	}
	return uc.entries.ListByMaterial(materialID)
}

// ListMaterials lista los materiales, opcionalmente filtrados por categoría,
// en orden de inserción en el catálogo.
func (uc *LedgerUseCase) ListMaterials(category string) (*dto.MaterialListResponse, error) {
	list, err := uc.materials.List(category)
	if err != nil {
		return nil, err
	}
	items := make([]dto.MaterialResponse, 0, len(list))
	for _, m := range list {
		items = append(items, *toMaterialResponse(m))
	}
	return &dto.MaterialListResponse{Items: items, Total: len(items)}, nil
}

// UpdateMaterial actualiza campos descriptivos. El balance nunca se toca por
// esta vía.
func (uc *LedgerUseCase) UpdateMaterial(materialID string, in dto.UpdateMaterialRequest) (*dto.MaterialResponse, error) {
	material, err := uc.materials.GetByID(materialID)
	if err != nil {
		return nil, err
	}
	if material == nil {
		return nil, domain.ErrNotFound
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.ErrInvalidInput
		}
		if name != material.Name {
			other, err := uc.materials.GetByName(name)
			if err != nil {
				return nil, err
			}
			if other != nil {
				return nil, domain.ErrDuplicate
			}
			material.Name = name
		}
	}
	if in.Category != nil {
		material.Category = *in.Category
	}
	if in.Unit != nil {
		material.Unit = *in.Unit
	}
	material.UpdatedAt = time.Now()
	if err := uc.materials.Update(material); err != nil {
		return nil, err
	}
	return toMaterialResponse(material), nil
}

// DeleteMaterial elimina un material. Se rechaza con ErrConflict mientras
// alguna fórmula lo referencie por nombre.
func (uc *LedgerUseCase) DeleteMaterial(materialID string) error {
	material, err := uc.materials.GetByID(materialID)
	if err != nil {
		return err
	}
	if material == nil {
		return domain.ErrNotFound
	}
	referenced, err := uc.formulas.ReferencesMaterial(material.Name)
	if err != nil {
		return err
	}
	if referenced {
		return domain.ErrConflict
	}
	return uc.materials.Delete(materialID)
}

// ExportStockBook genera el libro de inventario (xlsx) con todos los
// materiales y sus historiales.
func (uc *LedgerUseCase) ExportStockBook() ([]byte, error) {
	materials, err := uc.materials.List("")
	if err != nil {
		return nil, err
	}
	histories := make(map[string][]entity.LedgerEntry, len(materials))
	for _, m := range materials {
		history, err := uc.entries.ListByMaterial(m.ID)
		if err != nil {
			return nil, err
		}
		histories[m.ID] = history
	}
	return uc.book.Export(materials, histories)
}

func toMaterialResponse(m *entity.Material) *dto.MaterialResponse {
	return &dto.MaterialResponse{
		ID:        m.ID,
		Name:      m.Name,
		Category:  m.Category,
		Unit:      m.Unit,
		Balance:   m.Balance,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func toEntryResponse(e *entity.LedgerEntry) *dto.LedgerEntryResponse {
	return &dto.LedgerEntryResponse{
		ID:          e.ID,
		Date:        e.Date,
		Particulars: e.Particulars,
		Inward:      e.Inward,
		Outward:     e.Outward,
		Balance:     e.Balance,
		Remarks:     e.Remarks,
	}
}
