package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jlindhorst/studiprogress-api/internal/models"
	appErrors "github.com/jlindhorst/studiprogress-api/pkg/errors"
	"github.com/jlindhorst/studiprogress-api/pkg/hash"
)

type fakeStudentRepo struct {
	students map[string]models.Student
	existing bool
}

func (f *fakeStudentRepo) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if s, ok := f.students[id]; ok {
		return &s, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeStudentRepo) FindDetailByID(ctx context.Context, id string) (*models.StudentDetail, error) {
	if s, ok := f.students[id]; ok {
		name := "Informatik"
		return &models.StudentDetail{Student: s, StudiengangName: &name}, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeStudentRepo) List(ctx context.Context) ([]models.Student, error) {
	students := make([]models.Student, 0, len(f.students))
	for _, s := range f.students {
		students = append(students, s)
	}
	return students, nil
}

func (f *fakeStudentRepo) ExistsByEmailOrMatrikelnummer(ctx context.Context, email, matrikelnummer string) (bool, error) {
	return f.existing, nil
}

func (f *fakeStudentRepo) Create(ctx context.Context, student *models.Student) error {
	if f.students == nil {
		f.students = make(map[string]models.Student)
	}
	if student.ID == "" {
		student.ID = "stu-new"
	}
	f.students[student.ID] = *student
	return nil
}

func (f *fakeStudentRepo) Update(ctx context.Context, student *models.Student) error {
	f.students[student.ID] = *student
	return nil
}

type fakeStudentSemesters struct {
	semester map[int]models.Semester
}

func (f *fakeStudentSemesters) ListByStudent(ctx context.Context, studentID string) ([]models.Semester, error) {
	var list []models.Semester
	for _, s := range f.semester {
		list = append(list, s)
	}
	return list, nil
}

func (f *fakeStudentSemesters) ExistsByNummer(ctx context.Context, studentID string, nummer int) (bool, error) {
	_, ok := f.semester[nummer]
	return ok, nil
}

func (f *fakeStudentSemesters) Create(ctx context.Context, semester *models.Semester) error {
	if f.semester == nil {
		f.semester = make(map[int]models.Semester)
	}
	semester.ID = "sem-new"
	f.semester[semester.Nummer] = *semester
	return nil
}

type fakeCatalogResolver struct{}

func (f *fakeCatalogResolver) FindOrCreateHochschule(ctx context.Context, name string) (*models.Hochschule, error) {
	return &models.Hochschule{ID: "hs-1", Name: name}, nil
}

func (f *fakeCatalogResolver) FindOrCreateStudiengang(ctx context.Context, req CreateStudiengangRequest) (*models.Studiengang, error) {
	return &models.Studiengang{ID: "sg-1", Name: req.Name, HochschuleID: "hs-1", ECTSGesamt: req.ECTSGesamt}, nil
}

func newStudentFixture(repo *fakeStudentRepo, semester *fakeStudentSemesters) *StudentService {
	return NewStudentService(repo, semester, &fakeCatalogResolver{}, hash.NewBcryptHasher(4), validator.New(), zap.NewNop())
}

func registerReq() RegisterStudentRequest {
	return RegisterStudentRequest{
		Vorname:        "Lena",
		Nachname:       "Weber",
		Matrikelnummer: "1234567",
		Email:          "lena@example.com",
		Password:       "geheim123",
		AnzahlSemester: 6,
		AnzahlModule:   12,
		StartDatum:     "2024-10-01",
		ZielDatum:      "2027-10-01",
		Hochschule:     "FernUni Hagen",
		Studiengang:    "Informatik",
		ECTSGesamt:     180,
	}
}

func TestStudentServiceRegister(t *testing.T) {
	repo := &fakeStudentRepo{}
	svc := newStudentFixture(repo, &fakeStudentSemesters{})

	detail, err := svc.Register(context.Background(), registerReq())
	require.NoError(t, err)
	assert.Equal(t, "1234567", detail.Matrikelnummer)
	require.NotNil(t, detail.StudiengangID)
	assert.Equal(t, "sg-1", *detail.StudiengangID)
	assert.NotEqual(t, "geheim123", detail.PasswordHash)
}

func TestStudentServiceRegisterConflict(t *testing.T) {
	repo := &fakeStudentRepo{existing: true}
	svc := newStudentFixture(repo, &fakeStudentSemesters{})

	_, err := svc.Register(context.Background(), registerReq())
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
}

func TestStudentServiceRegisterRejectsBadDates(t *testing.T) {
	svc := newStudentFixture(&fakeStudentRepo{}, &fakeStudentSemesters{})

	req := registerReq()
	req.ZielDatum = "2024-01-01"
	_, err := svc.Register(context.Background(), req)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	req = registerReq()
	req.StartDatum = "01.10.2024"
	_, err = svc.Register(context.Background(), req)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestStudentServiceExmatrikulieren(t *testing.T) {
	repo := &fakeStudentRepo{}
	svc := newStudentFixture(repo, &fakeStudentSemesters{})

	detail, err := svc.Register(context.Background(), registerReq())
	require.NoError(t, err)

	updated, err := svc.Exmatrikulieren(context.Background(), detail.ID, ExmatrikulationRequest{Datum: "2026-04-01"})
	require.NoError(t, err)
	require.NotNil(t, updated.Exmatrikulationsdatum)

	_, err = svc.Exmatrikulieren(context.Background(), detail.ID, ExmatrikulationRequest{Datum: "2020-01-01"})
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestStudentServiceAddSemester(t *testing.T) {
	repo := &fakeStudentRepo{}
	semester := &fakeStudentSemesters{}
	svc := newStudentFixture(repo, semester)

	detail, err := svc.Register(context.Background(), registerReq())
	require.NoError(t, err)

	created, err := svc.AddSemester(context.Background(), detail.ID, CreateSemesterRequest{Nummer: 1, Beginn: "2024-10-01", Ende: "2025-03-31"})
	require.NoError(t, err)
	assert.Equal(t, 1, created.Nummer)

	_, err = svc.AddSemester(context.Background(), detail.ID, CreateSemesterRequest{Nummer: 1, Beginn: "2025-04-01", Ende: "2025-09-30"})
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))

	_, err = svc.AddSemester(context.Background(), detail.ID, CreateSemesterRequest{Nummer: 2, Beginn: "2025-09-30", Ende: "2025-04-01"})
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}
