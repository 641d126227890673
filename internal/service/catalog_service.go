package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/jlindhorst/studiprogress-api/internal/models"
	appErrors "github.com/jlindhorst/studiprogress-api/pkg/errors"
)

type catalogRepository interface {
	FindHochschuleByName(ctx context.Context, name string) (*models.Hochschule, error)
	CreateHochschule(ctx context.Context, hochschule *models.Hochschule) error
	ListHochschulen(ctx context.Context) ([]models.Hochschule, error)
	FindStudiengangByName(ctx context.Context, hochschuleID, name string) (*models.Studiengang, error)
	FindStudiengangByID(ctx context.Context, id string) (*models.Studiengang, error)
	CreateStudiengang(ctx context.Context, studiengang *models.Studiengang) error
	ListStudiengaenge(ctx context.Context, hochschuleID string) ([]models.Studiengang, error)
}

type modulRepository interface {
	FindByID(ctx context.Context, id string) (*models.Modul, error)
	FindByCode(ctx context.Context, code string) (*models.Modul, error)
	List(ctx context.Context, filter models.ModulFilter) ([]models.Modul, int, error)
	Create(ctx context.Context, modul *models.Modul) error
	ListKurse(ctx context.Context, modulID string) ([]models.Kurs, error)
	FindKursByNummer(ctx context.Context, nummer string) (*models.Kurs, error)
	CreateKurs(ctx context.Context, kurs *models.Kurs) error
}

// CreateStudiengangRequest describes a program creation payload.
type CreateStudiengangRequest struct {
	Name       string `json:"name" validate:"required"`
	Hochschule string `json:"hochschule" validate:"required"`
	ECTSGesamt int    `json:"ects_gesamt" validate:"required,gt=0"`
}

// CreateModulRequest describes a module creation payload.
type CreateModulRequest struct {
	Code          string              `json:"code" validate:"required"`
	Name          string              `json:"name" validate:"required"`
	ECTSPunkte    int                 `json:"ects_punkte" validate:"required,gt=0"`
	StudiengangID string              `json:"studiengang_id" validate:"required"`
	Kurse         []CreateKursRequest `json:"kurse" validate:"dive"`
}

// CreateKursRequest describes one constituent course.
type CreateKursRequest struct {
	Nummer string `json:"nummer" validate:"required"`
	Name   string `json:"name" validate:"required"`
}

// CatalogService manages institutions, programs, modules and courses.
type CatalogService struct {
	catalog   catalogRepository
	module    modulRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCatalogService constructs a CatalogService.
func NewCatalogService(catalog catalogRepository, module modulRepository, validate *validator.Validate, logger *zap.Logger) *CatalogService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{catalog: catalog, module: module, validator: validate, logger: logger}
}

// FindOrCreateHochschule resolves an institution by name, creating it on first use.
func (s *CatalogService) FindOrCreateHochschule(ctx context.Context, name string) (*models.Hochschule, error) {
	if name == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "hochschule name is required")
	}
	hochschule, err := s.catalog.FindHochschuleByName(ctx, name)
	if err == nil {
		return hochschule, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up hochschule")
	}
	hochschule = &models.Hochschule{Name: name}
	if err := s.catalog.CreateHochschule(ctx, hochschule); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create hochschule")
	}
	s.logger.Info("hochschule created", zap.String("name", name))
	return hochschule, nil
}

// ListHochschulen returns all known institutions.
func (s *CatalogService) ListHochschulen(ctx context.Context) ([]models.Hochschule, error) {
	hochschulen, err := s.catalog.ListHochschulen(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list hochschulen")
	}
	return hochschulen, nil
}

// FindOrCreateStudiengang resolves a program by name within its institution,
// creating both on first use.
func (s *CatalogService) FindOrCreateStudiengang(ctx context.Context, req CreateStudiengangRequest) (*models.Studiengang, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid studiengang payload")
	}
	hochschule, err := s.FindOrCreateHochschule(ctx, req.Hochschule)
	if err != nil {
		return nil, err
	}
	studiengang, err := s.catalog.FindStudiengangByName(ctx, hochschule.ID, req.Name)
	if err == nil {
		return studiengang, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up studiengang")
	}
	studiengang = &models.Studiengang{Name: req.Name, HochschuleID: hochschule.ID, ECTSGesamt: req.ECTSGesamt}
	if err := s.catalog.CreateStudiengang(ctx, studiengang); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create studiengang")
	}
	s.logger.Info("studiengang created", zap.String("name", req.Name), zap.String("hochschule", req.Hochschule))
	return studiengang, nil
}

// GetStudiengang returns a program by ID.
func (s *CatalogService) GetStudiengang(ctx context.Context, id string) (*models.Studiengang, error) {
	studiengang, err := s.catalog.FindStudiengangByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "studiengang not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load studiengang")
	}
	return studiengang, nil
}

// ListStudiengaenge returns programs, optionally scoped to one institution.
func (s *CatalogService) ListStudiengaenge(ctx context.Context, hochschuleID string) ([]models.Studiengang, error) {
	studiengaenge, err := s.catalog.ListStudiengaenge(ctx, hochschuleID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list studiengaenge")
	}
	return studiengaenge, nil
}

// CreateModul registers a new module with its courses. The module code must be
// unique across the catalogue.
func (s *CatalogService) CreateModul(ctx context.Context, req CreateModulRequest) (*models.Modul, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid modul payload")
	}
	if _, err := s.catalog.FindStudiengangByID(ctx, req.StudiengangID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "studiengang not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load studiengang")
	}
	if _, err := s.module.FindByCode(ctx, req.Code); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "modul code already exists")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check modul code")
	}

	modul := &models.Modul{
		Code:          req.Code,
		Name:          req.Name,
		ECTSPunkte:    req.ECTSPunkte,
		StudiengangID: req.StudiengangID,
	}
	if err := s.module.Create(ctx, modul); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create modul")
	}
	for _, kurs := range req.Kurse {
		if err := s.AddKurs(ctx, modul.ID, kurs); err != nil {
			return nil, err
		}
	}
	return modul, nil
}

// GetModul returns a module by ID.
func (s *CatalogService) GetModul(ctx context.Context, id string) (*models.Modul, error) {
	modul, err := s.module.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "modul not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load modul")
	}
	return modul, nil
}

// ListModule returns modules with pagination metadata.
func (s *CatalogService) ListModule(ctx context.Context, filter models.ModulFilter) ([]models.Modul, *models.Pagination, error) {
	module, total, err := s.module.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list module")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return module, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// AddKurs registers a course under a module. Course numbers are unique.
func (s *CatalogService) AddKurs(ctx context.Context, modulID string, req CreateKursRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid kurs payload")
	}
	if _, err := s.module.FindKursByNummer(ctx, req.Nummer); err == nil {
		return appErrors.Clone(appErrors.ErrConflict, "kurs nummer already exists")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check kurs nummer")
	}
	kurs := &models.Kurs{Nummer: req.Nummer, Name: req.Name, ModulID: modulID}
	if err := s.module.CreateKurs(ctx, kurs); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create kurs")
	}
	return nil
}

// ListKurse returns the courses of a module.
func (s *CatalogService) ListKurse(ctx context.Context, modulID string) ([]models.Kurs, error) {
	if _, err := s.GetModul(ctx, modulID); err != nil {
		return nil, err
	}
	kurse, err := s.module.ListKurse(ctx, modulID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list kurse")
	}
	return kurse, nil
}
