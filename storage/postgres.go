package storage

import (
	"context"
	"errors"
	"fmt"

	"citation-hand/models"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// GormProvider speichert in PostgreSQL über GORM.
type GormProvider struct {
	db *gorm.DB
}

// OpenPostgres verbindet sich mit der Datenbank und migriert das Schema.
func OpenPostgres(dsn string, log *zap.Logger) (*GormProvider, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	log.Info("Datenbankverbindung hergestellt.")

	p := NewGormProvider(db)
	log.Info("Running database auto-migration...")
	if err := p.Migrate(); err != nil {
		return nil, err
	}
	return p, nil
}

// NewGormProvider verwendet eine bestehende GORM-Verbindung.
func NewGormProvider(db *gorm.DB) *GormProvider {
	return &GormProvider{db: db}
}

// Migrate legt Tabellen und Indizes an.
func (p *GormProvider) Migrate() error {
	if err := p.db.AutoMigrate(&models.Project{}, &models.Citation{}, &models.ProjectCitation{}); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

func (p *GormProvider) View(ctx context.Context, fn func(Store) error) error {
	return fn(&gormStore{db: p.db.WithContext(ctx), readOnly: true})
}

func (p *GormProvider) RunInTx(ctx context.Context, fn func(Store) error) error {
	return p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}

func (p *GormProvider) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

type gormStore struct {
	db       *gorm.DB
	readOnly bool
}

func (s *gormStore) writable() error {
	if s.readOnly {
		return ErrReadOnly
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// affected wandelt "keine Zeile betroffen" in ErrNotFound um.
func affected(res *gorm.DB) error {
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *gormStore) ProjectExists(ctx context.Context, id uint) (bool, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Project{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *gormStore) GetProject(ctx context.Context, id uint) (*models.Project, error) {
	var p models.Project
	if err := s.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (s *gormStore) ProjectByName(ctx context.Context, name string) (*models.Project, error) {
	var p models.Project
	err := s.db.WithContext(ctx).Where("name_norm = ?", models.NormalizeProjectName(name)).First(&p).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (s *gormStore) ListProjects(ctx context.Context) ([]models.Project, error) {
	var out []models.Project
	err := s.db.WithContext(ctx).Order("id").Find(&out).Error
	return out, err
}

func (s *gormStore) CreateProject(ctx context.Context, p *models.Project) error {
	if err := s.writable(); err != nil {
		return err
	}
	p.NameNorm = models.NormalizeProjectName(p.Name)
	return s.db.WithContext(ctx).Create(p).Error
}

func (s *gormStore) DeleteProject(ctx context.Context, id uint) error {
	if err := s.writable(); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Where("project_id = ?", id).Delete(&models.ProjectCitation{}).Error; err != nil {
		return err
	}
	return affected(s.db.WithContext(ctx).Delete(&models.Project{}, id))
}

func (s *gormStore) GetCitation(ctx context.Context, id uint) (*models.Citation, error) {
	var c models.Citation
	if err := s.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (s *gormStore) InsertCitation(ctx context.Context, c *models.Citation) error {
	if err := s.writable(); err != nil {
		return err
	}
	c.ID = 0
	return s.db.WithContext(ctx).Create(c).Error
}

// MutateCitation schreibt alle Spalten, damit geleerte Felder als NULL gespeichert werden.
func (s *gormStore) MutateCitation(ctx context.Context, c *models.Citation) error {
	if err := s.writable(); err != nil {
		return err
	}
	res := s.db.WithContext(ctx).Model(&models.Citation{ID: c.ID}).
		Select("*").Omit("id", "created_at").
		Updates(c)
	return affected(res)
}

func (s *gormStore) DeleteCitation(ctx context.Context, id uint) error {
	if err := s.writable(); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Where("citation_id = ?", id).Delete(&models.ProjectCitation{}).Error; err != nil {
		return err
	}
	return affected(s.db.WithContext(ctx).Delete(&models.Citation{}, id))
}

func (s *gormStore) ListByProject(ctx context.Context, projectID uint) ([]*models.Citation, error) {
	var out []*models.Citation
	err := s.db.WithContext(ctx).
		Joins("JOIN project_citations pc ON pc.citation_id = citations.id").
		Where("pc.project_id = ?", projectID).
		Order("citations.id").
		Find(&out).Error
	return out, err
}

func (s *gormStore) ListByType(ctx context.Context, t models.CitationType) ([]*models.Citation, error) {
	var out []*models.Citation
	err := s.db.WithContext(ctx).Where("type = ?", t).Order("id").Find(&out).Error
	return out, err
}

func (s *gormStore) ListAssociations(ctx context.Context, citationID uint) ([]uint, error) {
	var ids []uint
	err := s.db.WithContext(ctx).Model(&models.ProjectCitation{}).
		Where("citation_id = ?", citationID).
		Order("project_id").
		Pluck("project_id", &ids).Error
	return ids, err
}

func (s *gormStore) HasAssociation(ctx context.Context, projectID, citationID uint) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.ProjectCitation{}).
		Where("project_id = ? AND citation_id = ?", projectID, citationID).
		Count(&n).Error
	return n > 0, err
}

func (s *gormStore) AddAssociation(ctx context.Context, projectID, citationID uint) error {
	if err := s.writable(); err != nil {
		return err
	}
	link := models.ProjectCitation{ProjectID: projectID, CitationID: citationID}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&link).Error
}

func (s *gormStore) RemoveAssociation(ctx context.Context, projectID, citationID uint) error {
	if err := s.writable(); err != nil {
		return err
	}
	return affected(s.db.WithContext(ctx).
		Where("project_id = ? AND citation_id = ?", projectID, citationID).
		Delete(&models.ProjectCitation{}))
}
