package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"citation-hand/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ProviderSuite prüft das gemeinsame Verhalten aller Provider-Implementierungen.
type ProviderSuite struct {
	suite.Suite
	open func(t *testing.T) Provider
	p    Provider
	ctx  context.Context
}

func TestMemoryProvider(t *testing.T) {
	suite.Run(t, &ProviderSuite{open: func(t *testing.T) Provider {
		return NewMemoryProvider()
	}})
}

func TestSQLiteProvider(t *testing.T) {
	suite.Run(t, &ProviderSuite{open: func(t *testing.T) Provider {
		p, err := OpenSQLite(filepath.Join(t.TempDir(), "citations.db"))
		require.NoError(t, err)
		t.Cleanup(func() { p.Close() })
		return p
	}})
}

// TestGormProvider fährt den GORM-Provider gegen SQLite statt Postgres.
func TestGormProvider(t *testing.T) {
	suite.Run(t, &ProviderSuite{open: func(t *testing.T) Provider {
		db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "gorm.db")), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		require.NoError(t, err)
		p := NewGormProvider(db)
		require.NoError(t, p.Migrate())
		t.Cleanup(func() { p.Close() })
		return p
	}})
}

func (s *ProviderSuite) SetupTest() {
	s.ctx = context.Background()
	s.p = s.open(s.T())
}

func (s *ProviderSuite) tx(fn func(st Store)) {
	s.Require().NoError(s.p.RunInTx(s.ctx, func(st Store) error {
		fn(st)
		return nil
	}))
}

func (s *ProviderSuite) view(fn func(st Store)) {
	s.Require().NoError(s.p.View(s.ctx, func(st Store) error {
		fn(st)
		return nil
	}))
}

func sampleArticle() *models.Citation {
	return &models.Citation{
		Type:    models.TypeArticle,
		Title:   "Deep learning",
		Authors: []string{"Yann LeCun", "Yoshua Bengio"},
		Year:    models.Ref(2015),
		Journal: models.Ref("Nature"),
		Volume:  models.Ref(521),
		Pages:   models.Ref("436-444"),
		DOI:     models.Ref("10.1038/nature14539"),
	}
}

func (s *ProviderSuite) TestProjects() {
	var first, second models.Project
	s.tx(func(st Store) {
		first = models.Project{Name: "Thesis  Draft"}
		s.Require().NoError(st.CreateProject(s.ctx, &first))
		second = models.Project{Name: "Paper"}
		s.Require().NoError(st.CreateProject(s.ctx, &second))
	})
	s.NotZero(first.ID)
	s.NotEqual(first.ID, second.ID)

	s.view(func(st Store) {
		ok, err := st.ProjectExists(s.ctx, first.ID)
		s.Require().NoError(err)
		s.True(ok)

		got, err := st.GetProject(s.ctx, first.ID)
		s.Require().NoError(err)
		s.Equal("Thesis  Draft", got.Name)

		byName, err := st.ProjectByName(s.ctx, "thesis draft")
		s.Require().NoError(err)
		s.Equal(first.ID, byName.ID)

		list, err := st.ListProjects(s.ctx)
		s.Require().NoError(err)
		s.Len(list, 2)
		s.Equal(first.ID, list[0].ID)

		_, err = st.GetProject(s.ctx, 999)
		s.ErrorIs(err, ErrNotFound)
		_, err = st.ProjectByName(s.ctx, "missing")
		s.ErrorIs(err, ErrNotFound)
	})

	s.tx(func(st Store) {
		s.Require().NoError(st.DeleteProject(s.ctx, second.ID))
		s.ErrorIs(st.DeleteProject(s.ctx, second.ID), ErrNotFound)
	})
	s.view(func(st Store) {
		ok, err := st.ProjectExists(s.ctx, second.ID)
		s.Require().NoError(err)
		s.False(ok)
	})
}

func (s *ProviderSuite) TestCitationRoundTrip() {
	c := sampleArticle()
	s.tx(func(st Store) {
		s.Require().NoError(st.InsertCitation(s.ctx, c))
	})
	s.NotZero(c.ID)

	s.view(func(st Store) {
		got, err := st.GetCitation(s.ctx, c.ID)
		s.Require().NoError(err)
		s.Equal(models.TypeArticle, got.Type)
		s.Equal([]string{"Yann LeCun", "Yoshua Bengio"}, []string(got.Authors))
		s.Equal(2015, *got.Year)
		s.Equal("10.1038/nature14539", *got.DOI)
		s.Nil(got.Issue)
		s.Nil(got.Publisher)
	})

	s.tx(func(st Store) {
		c.DOI = nil
		c.Year = nil
		c.Issue = models.Ref("7553")
		c.Title = "Deep learning revisited"
		s.Require().NoError(st.MutateCitation(s.ctx, c))
	})
	s.view(func(st Store) {
		got, err := st.GetCitation(s.ctx, c.ID)
		s.Require().NoError(err)
		s.Nil(got.DOI)
		s.Nil(got.Year)
		s.Equal("7553", *got.Issue)
		s.Equal("Deep learning revisited", got.Title)
	})

	err := s.p.RunInTx(s.ctx, func(st Store) error {
		return st.MutateCitation(s.ctx, &models.Citation{ID: 4242, Type: models.TypeBook, Title: "x", Authors: []string{"A B"}})
	})
	s.ErrorIs(err, ErrNotFound)
}

func (s *ProviderSuite) TestReturnedCopiesAreIndependent() {
	c := sampleArticle()
	s.tx(func(st Store) {
		s.Require().NoError(st.InsertCitation(s.ctx, c))
	})
	c.Authors[0] = "Changed Name"
	*c.Year = 1900

	s.view(func(st Store) {
		got, err := st.GetCitation(s.ctx, c.ID)
		s.Require().NoError(err)
		s.Equal("Yann LeCun", got.Authors[0])
		s.Equal(2015, *got.Year)
	})
}

func (s *ProviderSuite) TestAssociations() {
	var p1, p2 models.Project
	a, b := sampleArticle(), sampleArticle()
	b.Title = "Other"
	s.tx(func(st Store) {
		p1 = models.Project{Name: "one"}
		p2 = models.Project{Name: "two"}
		s.Require().NoError(st.CreateProject(s.ctx, &p1))
		s.Require().NoError(st.CreateProject(s.ctx, &p2))
		s.Require().NoError(st.InsertCitation(s.ctx, a))
		s.Require().NoError(st.InsertCitation(s.ctx, b))

		s.Require().NoError(st.AddAssociation(s.ctx, p1.ID, b.ID))
		s.Require().NoError(st.AddAssociation(s.ctx, p1.ID, a.ID))
		s.Require().NoError(st.AddAssociation(s.ctx, p1.ID, a.ID))
		s.Require().NoError(st.AddAssociation(s.ctx, p2.ID, a.ID))
	})

	s.view(func(st Store) {
		owners, err := st.ListAssociations(s.ctx, a.ID)
		s.Require().NoError(err)
		s.Equal([]uint{p1.ID, p2.ID}, owners)

		list, err := st.ListByProject(s.ctx, p1.ID)
		s.Require().NoError(err)
		s.Require().Len(list, 2)
		s.Equal(a.ID, list[0].ID)
		s.Equal(b.ID, list[1].ID)

		has, err := st.HasAssociation(s.ctx, p2.ID, b.ID)
		s.Require().NoError(err)
		s.False(has)
	})

	s.tx(func(st Store) {
		s.Require().NoError(st.RemoveAssociation(s.ctx, p2.ID, a.ID))
		s.ErrorIs(st.RemoveAssociation(s.ctx, p2.ID, a.ID), ErrNotFound)
		s.Require().NoError(st.DeleteCitation(s.ctx, b.ID))
		s.ErrorIs(st.DeleteCitation(s.ctx, b.ID), ErrNotFound)
	})

	s.view(func(st Store) {
		list, err := st.ListByProject(s.ctx, p1.ID)
		s.Require().NoError(err)
		s.Len(list, 1)

		owners, err := st.ListAssociations(s.ctx, a.ID)
		s.Require().NoError(err)
		s.Equal([]uint{p1.ID}, owners)
	})

	s.tx(func(st Store) {
		s.Require().NoError(st.DeleteProject(s.ctx, p1.ID))
	})
	s.view(func(st Store) {
		owners, err := st.ListAssociations(s.ctx, a.ID)
		s.Require().NoError(err)
		s.Empty(owners)
		_, err = st.GetCitation(s.ctx, a.ID)
		s.NoError(err, "deleting a project keeps its citations")
	})
}

func (s *ProviderSuite) TestListByType() {
	book := &models.Citation{
		Type: models.TypeBook, Title: "B", Authors: []string{"Ann Lee"},
		Publisher: models.Ref("P"), Place: models.Ref("X"),
	}
	s.tx(func(st Store) {
		s.Require().NoError(st.InsertCitation(s.ctx, sampleArticle()))
		s.Require().NoError(st.InsertCitation(s.ctx, book))
		s.Require().NoError(st.InsertCitation(s.ctx, sampleArticle()))
	})
	s.view(func(st Store) {
		articles, err := st.ListByType(s.ctx, models.TypeArticle)
		s.Require().NoError(err)
		s.Len(articles, 2)
		books, err := st.ListByType(s.ctx, models.TypeBook)
		s.Require().NoError(err)
		s.Require().Len(books, 1)
		s.Equal(book.ID, books[0].ID)
	})
}

func (s *ProviderSuite) TestRollbackOnError() {
	boom := errors.New("boom")
	err := s.p.RunInTx(s.ctx, func(st Store) error {
		s.Require().NoError(st.CreateProject(s.ctx, &models.Project{Name: "temp"}))
		s.Require().NoError(st.InsertCitation(s.ctx, sampleArticle()))
		return boom
	})
	s.ErrorIs(err, boom)

	s.view(func(st Store) {
		list, err := st.ListProjects(s.ctx)
		s.Require().NoError(err)
		s.Empty(list)
		articles, err := st.ListByType(s.ctx, models.TypeArticle)
		s.Require().NoError(err)
		s.Empty(articles)
	})
}

func (s *ProviderSuite) TestViewIsReadOnly() {
	err := s.p.View(s.ctx, func(st Store) error {
		return st.CreateProject(s.ctx, &models.Project{Name: "nope"})
	})
	s.ErrorIs(err, ErrReadOnly)
}
