package portfolio

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anhtran/folio-api/internal/domain/portfolio"
	"github.com/anhtran/folio-api/pkg/apperror"
	"github.com/anhtran/folio-api/pkg/logger"
)

func newTestEditor(t *testing.T) (*Editor, *StateManager) {
	t.Helper()
	store := &fakeStore{}
	m := newTestManager(store)
	m.Load(context.Background())
	return NewEditor(m, logger.NewNop()), m
}

func TestSaveProject_CreateAssignsDistinctIDs(t *testing.T) {
	editor, m := newTestEditor(t)
	before := len(m.Current().Projects)

	first, err := editor.SaveProject(context.Background(), portfolio.Project{
		Title:       "Interview App",
		Description: "Mock interview practice",
	})
	require.NoError(t, err)

	second, err := editor.SaveProject(context.Background(), portfolio.Project{
		Title:       "Folio API",
		Description: "Portfolio backend",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, first.ID)
	assert.NotEmpty(t, second.ID)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Len(t, m.Current().Projects, before+2)
}

func TestSaveProject_EditReplacesInPlaceKeepingOrder(t *testing.T) {
	editor, m := newTestEditor(t)

	first, err := editor.SaveProject(context.Background(), portfolio.Project{Title: "A", Description: "a"})
	require.NoError(t, err)
	_, err = editor.SaveProject(context.Background(), portfolio.Project{Title: "B", Description: "b"})
	require.NoError(t, err)

	edited, err := editor.SaveProject(context.Background(), portfolio.Project{
		ID:          first.ID,
		Title:       "A v2",
		Description: "a, revised",
	})
	require.NoError(t, err)

	projects := m.Current().Projects
	defaults := len(portfolio.Defaults().Projects)
	require.Len(t, projects, defaults+2)
	assert.Equal(t, edited, projects[defaults])
	assert.Equal(t, first.ID, projects[defaults].ID)
	assert.Equal(t, "A v2", projects[defaults].Title)
	assert.Equal(t, "B", projects[defaults+1].Title)
}

func TestSaveProject_EditUnknownIDFails(t *testing.T) {
	editor, m := newTestEditor(t)
	before := m.Current().Projects

	_, err := editor.SaveProject(context.Background(), portfolio.Project{
		ID:          "no-such-id",
		Title:       "Ghost",
		Description: "never created",
	})

	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.Equal(t, before, m.Current().Projects)
}

func TestSaveProject_ValidationRejectsBlankTitle(t *testing.T) {
	editor, m := newTestEditor(t)
	before := m.Current().Projects

	_, err := editor.SaveProject(context.Background(), portfolio.Project{Description: "no title"})

	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
	assert.Equal(t, before, m.Current().Projects)
}

func TestSaveProject_TechnologiesDropBlanks(t *testing.T) {
	editor, _ := newTestEditor(t)

	saved, err := editor.SaveProject(context.Background(), portfolio.Project{
		Title:        "Cleaner",
		Description:  "drops blanks",
		Technologies: []string{" Go ", "", "  ", "Redis"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"Go", "Redis"}, saved.Technologies)
}

func TestDeleteProject_RemovesOnlyTarget(t *testing.T) {
	editor, m := newTestEditor(t)

	first, err := editor.SaveProject(context.Background(), portfolio.Project{Title: "Keep", Description: "k"})
	require.NoError(t, err)
	second, err := editor.SaveProject(context.Background(), portfolio.Project{Title: "Drop", Description: "d"})
	require.NoError(t, err)

	before := len(m.Current().Projects)
	require.NoError(t, editor.DeleteProject(context.Background(), second.ID))

	projects := m.Current().Projects
	assert.Len(t, projects, before-1)
	for _, p := range projects {
		assert.NotEqual(t, second.ID, p.ID)
	}
	assert.Equal(t, first.Title, projects[len(projects)-1].Title)
}

func TestDeleteProject_UnknownIDFails(t *testing.T) {
	editor, _ := newTestEditor(t)

	err := editor.DeleteProject(context.Background(), "no-such-id")

	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestSaveEducation_CreateAndDelete(t *testing.T) {
	editor, m := newTestEditor(t)
	before := len(m.Current().Education)

	entry, err := editor.SaveEducation(context.Background(), portfolio.Education{
		Institution: "HCMUT",
		Degree:      "BSc Computer Science",
		Year:        "2015 - 2019",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, entry.ID)
	assert.Len(t, m.Current().Education, before+1)

	require.NoError(t, editor.DeleteEducation(context.Background(), entry.ID))
	assert.Len(t, m.Current().Education, before)
}

func TestSaveEducation_ValidationRejectsBlankFields(t *testing.T) {
	editor, _ := newTestEditor(t)

	_, err := editor.SaveEducation(context.Background(), portfolio.Education{Institution: "HCMUT"})

	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
}

func TestAddSkill_TrimsAndRejectsEmpty(t *testing.T) {
	editor, m := newTestEditor(t)

	require.NoError(t, editor.AddSkill(context.Background(), "  Kubernetes  "))
	skills := m.Current().Skills
	assert.Equal(t, "Kubernetes", skills[len(skills)-1])

	err := editor.AddSkill(context.Background(), "   ")
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
}

func TestAddSkill_ConcurrentSubmitsBothSurvive(t *testing.T) {
	editor, m := newTestEditor(t)

	var wg sync.WaitGroup
	for _, skill := range []string{"Rust", "Zig"} {
		wg.Add(1)
		go func(s string) {
			defer wg.Done()
			assert.NoError(t, editor.AddSkill(context.Background(), s))
		}(skill)
	}
	wg.Wait()

	skills := m.Current().Skills
	assert.Contains(t, skills, "Rust")
	assert.Contains(t, skills, "Zig")
}

func TestRemoveSkill_RemovesEveryOccurrence(t *testing.T) {
	editor, m := newTestEditor(t)

	require.NoError(t, editor.AddSkill(context.Background(), "Go"))
	require.NoError(t, editor.AddSkill(context.Background(), "Go"))
	require.NoError(t, editor.RemoveSkill(context.Background(), "Go"))

	assert.NotContains(t, m.Current().Skills, "Go")
}

func TestRemoveSkill_AbsentValueIsNoOp(t *testing.T) {
	editor, m := newTestEditor(t)
	before := m.Current().Skills

	require.NoError(t, editor.RemoveSkill(context.Background(), "COBOL"))

	assert.Equal(t, before, m.Current().Skills)
}

func TestUpdatePersonalInfo_TrimsFields(t *testing.T) {
	editor, m := newTestEditor(t)

	err := editor.UpdatePersonalInfo(context.Background(), portfolio.PersonalInfo{
		Name:  "  Anh Tran  ",
		Title: " Backend Engineer ",
		Email: " anh@example.com ",
		Bio:   "keeps whitespace",
	})
	require.NoError(t, err)

	info := m.Current().PersonalInfo
	assert.Equal(t, "Anh Tran", info.Name)
	assert.Equal(t, "Backend Engineer", info.Title)
	assert.Equal(t, "anh@example.com", info.Email)
	assert.Equal(t, "keeps whitespace", info.Bio)
}
