package clinic

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vetclinic/backend/internal/domain/catalog"
	"github.com/vetclinic/backend/internal/domain/clinic"
	"github.com/vetclinic/backend/internal/domain/shared"
	"github.com/vetclinic/backend/internal/domain/shared/valueobject"
)

type stubAnimalRepo struct {
	animals map[uuid.UUID]*clinic.Animal
}

func (r *stubAnimalRepo) FindByID(_ context.Context, id uuid.UUID) (*clinic.Animal, error) {
	a, ok := r.animals[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return a, nil
}

func (r *stubAnimalRepo) FindByMicrochip(_ context.Context, microchipNo string) (*clinic.Animal, error) {
	for _, a := range r.animals {
		if a.MicrochipNo == microchipNo {
			return a, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *stubAnimalRepo) FindByOwner(_ context.Context, ownerID uuid.UUID) ([]*clinic.Animal, error) {
	var out []*clinic.Animal
	for _, a := range r.animals {
		if a.OwnerID == ownerID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *stubAnimalRepo) SearchByName(_ context.Context, name string, limit int) ([]*clinic.Animal, error) {
	var out []*clinic.Animal
	for _, a := range r.animals {
		if strings.Contains(strings.ToLower(a.Name), strings.ToLower(name)) {
			out = append(out, a)
		}
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (r *stubAnimalRepo) SearchByMicrochipPrefix(_ context.Context, prefix string, limit int) ([]*clinic.Animal, error) {
	var out []*clinic.Animal
	for _, a := range r.animals {
		if strings.HasPrefix(a.MicrochipNo, prefix) {
			out = append(out, a)
		}
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (r *stubAnimalRepo) Save(_ context.Context, a *clinic.Animal) error {
	r.animals[a.GetID()] = a
	return nil
}

type stubOwnerRepo struct {
	owners map[uuid.UUID]*clinic.Owner
}

func (r *stubOwnerRepo) FindByID(_ context.Context, id uuid.UUID) (*clinic.Owner, error) {
	o, ok := r.owners[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return o, nil
}

func (r *stubOwnerRepo) FindByContactNumber(_ context.Context, phone valueobject.Phone) (*clinic.Owner, error) {
	for _, o := range r.owners {
		if o.ContactNumber.Equals(phone) {
			return o, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *stubOwnerRepo) Save(_ context.Context, o *clinic.Owner) error {
	r.owners[o.GetID()] = o
	return nil
}

type stubDoctorRepo struct {
	doctors map[uuid.UUID]*clinic.Doctor
}

func (r *stubDoctorRepo) FindByID(_ context.Context, id uuid.UUID) (*clinic.Doctor, error) {
	d, ok := r.doctors[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return d, nil
}

func (r *stubDoctorRepo) FindByContactNumber(_ context.Context, phone valueobject.Phone) (*clinic.Doctor, error) {
	for _, d := range r.doctors {
		if d.ContactNumber.Equals(phone) {
			return d, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *stubDoctorRepo) FindByBranch(_ context.Context, branchID uuid.UUID) ([]*clinic.Doctor, error) {
	var out []*clinic.Doctor
	for _, d := range r.doctors {
		if d.BranchID == branchID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *stubDoctorRepo) Save(_ context.Context, d *clinic.Doctor) error {
	r.doctors[d.GetID()] = d
	return nil
}

type stubServiceRepo struct {
	services map[uuid.UUID]*clinic.Service
}

func (r *stubServiceRepo) FindByID(_ context.Context, id uuid.UUID) (*clinic.Service, error) {
	s, ok := r.services[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return s, nil
}

func (r *stubServiceRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]*clinic.Service, error) {
	var out []*clinic.Service
	for _, id := range ids {
		if s, ok := r.services[id]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *stubServiceRepo) FindAll(_ context.Context) ([]*clinic.Service, error) {
	var out []*clinic.Service
	for _, s := range r.services {
		out = append(out, s)
	}
	return out, nil
}

func (r *stubServiceRepo) Save(_ context.Context, s *clinic.Service) error {
	r.services[s.GetID()] = s
	return nil
}

type stubProductRepo struct {
	products map[uuid.UUID]*catalog.Product
}

func (r *stubProductRepo) FindByID(_ context.Context, id uuid.UUID) (*catalog.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return p, nil
}

func (r *stubProductRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]*catalog.Product, error) {
	var out []*catalog.Product
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *stubProductRepo) Save(_ context.Context, p *catalog.Product) error {
	r.products[p.GetID()] = p
	return nil
}

type stubCategoryRepo struct {
	categories map[uuid.UUID]*catalog.ProductCategory
}

func (r *stubCategoryRepo) FindByID(_ context.Context, id uuid.UUID) (*catalog.ProductCategory, error) {
	c, ok := r.categories[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return c, nil
}

func (r *stubCategoryRepo) FindByName(_ context.Context, name string) (*catalog.ProductCategory, error) {
	for _, c := range r.categories {
		if c.Name == name {
			return c, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *stubCategoryRepo) Save(_ context.Context, c *catalog.ProductCategory) error {
	r.categories[c.GetID()] = c
	return nil
}

type stubSequences struct {
	n int
}

func (s *stubSequences) Next(_ context.Context, code string) (string, error) {
	s.n++
	if code == shared.SequenceMicrochip {
		return fmt.Sprintf("HT%06d", s.n), nil
	}
	return fmt.Sprintf("SEQ%05d", s.n), nil
}

type registryFixture struct {
	svc         *RegistryService
	animalRepo  *stubAnimalRepo
	ownerRepo   *stubOwnerRepo
	doctorRepo  *stubDoctorRepo
	serviceRepo *stubServiceRepo
	productRepo *stubProductRepo
}

func newRegistryFixture() *registryFixture {
	f := &registryFixture{
		animalRepo:  &stubAnimalRepo{animals: make(map[uuid.UUID]*clinic.Animal)},
		ownerRepo:   &stubOwnerRepo{owners: make(map[uuid.UUID]*clinic.Owner)},
		doctorRepo:  &stubDoctorRepo{doctors: make(map[uuid.UUID]*clinic.Doctor)},
		serviceRepo: &stubServiceRepo{services: make(map[uuid.UUID]*clinic.Service)},
		productRepo: &stubProductRepo{products: make(map[uuid.UUID]*catalog.Product)},
	}
	f.svc = NewRegistryService(
		f.animalRepo, f.ownerRepo, f.doctorRepo, f.serviceRepo, f.productRepo,
		&stubCategoryRepo{categories: make(map[uuid.UUID]*catalog.ProductCategory)},
		&stubSequences{}, zap.NewNop())
	return f
}

func TestRegistryService_PhoneUniqueAcrossOwnersAndDoctors(t *testing.T) {
	ctx := context.Background()
	f := newRegistryFixture()

	owner, err := f.svc.RegisterOwner(ctx, RegisterOwnerRequest{
		Name: "Karim Rahman", ContactNumber: "01712345678",
	})
	require.NoError(t, err)
	assert.Equal(t, "01712345678", owner.ContactNumber.String())

	// same number, another owner
	_, err = f.svc.RegisterOwner(ctx, RegisterOwnerRequest{
		Name: "Rahim Uddin", ContactNumber: "017-1234 5678",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unique among animal owners")

	// same number, a doctor
	_, err = f.svc.RegisterDoctor(ctx, RegisterDoctorRequest{
		Name: "Dr. Hasan", ContactNumber: "01712345678", BranchID: uuid.New(),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unique among animal owners")

	doctor, err := f.svc.RegisterDoctor(ctx, RegisterDoctorRequest{
		Name: "Dr. Hasan", ContactNumber: "01811111111", BranchID: uuid.New(),
		Specialty: "Surgery",
	})
	require.NoError(t, err)
	assert.Equal(t, "Surgery", doctor.Specialty)

	// a doctor's number blocks new owners too
	_, err = f.svc.RegisterOwner(ctx, RegisterOwnerRequest{
		Name: "Jamal Hossain", ContactNumber: "01811111111",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unique among doctors")
}

func TestRegistryService_RegisterAnimal(t *testing.T) {
	ctx := context.Background()
	f := newRegistryFixture()

	owner, err := f.svc.RegisterOwner(ctx, RegisterOwnerRequest{
		Name: "Karim Rahman", ContactNumber: "01712345678",
	})
	require.NoError(t, err)

	// microchip assigned from the sequence when none given
	dob := time.Now().AddDate(-2, -4, 0)
	animal, err := f.svc.RegisterAnimal(ctx, RegisterAnimalRequest{
		Name: "Tommy", Species: "dog", Gender: "male",
		DateOfBirth: &dob, OwnerID: owner.GetID(),
	})
	require.NoError(t, err)
	assert.Equal(t, "HT000001", animal.MicrochipNo)
	assert.Equal(t, "2 years 4 months", animal.Age())

	// explicit microchip is honored, duplicates rejected
	animal2, err := f.svc.RegisterAnimal(ctx, RegisterAnimalRequest{
		MicrochipNo: "HT999999", Name: "Mimi", Species: "cat", OwnerID: owner.GetID(),
	})
	require.NoError(t, err)
	assert.Equal(t, "HT999999", animal2.MicrochipNo)

	_, err = f.svc.RegisterAnimal(ctx, RegisterAnimalRequest{
		MicrochipNo: "HT999999", Name: "Lucky", Species: "dog", OwnerID: owner.GetID(),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Animal ID 'HT999999' already exists!")
}

func TestRegistryService_SearchAnimals(t *testing.T) {
	ctx := context.Background()
	f := newRegistryFixture()

	owner, err := f.svc.RegisterOwner(ctx, RegisterOwnerRequest{
		Name: "Karim Rahman", ContactNumber: "01712345678",
	})
	require.NoError(t, err)

	tommy, err := f.svc.RegisterAnimal(ctx, RegisterAnimalRequest{
		Name: "Tommy", Species: "dog", OwnerID: owner.GetID(),
	})
	require.NoError(t, err)
	mimi, err := f.svc.RegisterAnimal(ctx, RegisterAnimalRequest{
		MicrochipNo: "CH123456", Name: "Mimi", Species: "cat", OwnerID: owner.GetID(),
	})
	require.NoError(t, err)

	// microchip prefix takes precedence over name matching
	found, err := f.svc.SearchAnimals(ctx, "HT", 0)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, tommy.GetID(), found[0].GetID())

	// name substring, case-insensitive
	found, err = f.svc.SearchAnimals(ctx, "mim", 0)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, mimi.GetID(), found[0].GetID())

	// "#" forces an exact microchip lookup
	found, err = f.svc.SearchAnimals(ctx, "#CH123456", 0)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, mimi.GetID(), found[0].GetID())

	found, err = f.svc.SearchAnimals(ctx, "#CH1", 0)
	require.NoError(t, err)
	assert.Empty(t, found, "partial microchip does not match an exact lookup")

	_, err = f.svc.SearchAnimals(ctx, "   ", 0)
	require.Error(t, err)
}

func TestRegistryService_RegisterAnimal_OwnerRequired(t *testing.T) {
	ctx := context.Background()
	f := newRegistryFixture()

	_, err := f.svc.RegisterAnimal(ctx, RegisterAnimalRequest{
		Name: "Tommy", Species: "dog", OwnerID: uuid.New(),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Add an owner.")
}

func TestRegistryService_CreateService_ProvisionsProduct(t *testing.T) {
	ctx := context.Background()
	f := newRegistryFixture()

	svc, err := f.svc.CreateService(ctx, CreateServiceRequest{
		Name: "Rabies Vaccine", Type: "vaccine", Price: decimal.NewFromInt(1200),
	})
	require.NoError(t, err)
	assert.Equal(t, clinic.ServiceTypeVaccine, svc.Type)

	// vaccines get a lot-tracked backing product
	product, err := f.productRepo.FindByID(ctx, svc.ProductID)
	require.NoError(t, err)
	assert.Equal(t, catalog.TrackingLot, product.Tracking)
	assert.True(t, product.ListPrice.Equal(decimal.NewFromInt(1200)))

	plain, err := f.svc.CreateService(ctx, CreateServiceRequest{
		Name: "Grooming", Type: "service", Price: decimal.NewFromInt(800),
	})
	require.NoError(t, err)
	groomingProduct, err := f.productRepo.FindByID(ctx, plain.ProductID)
	require.NoError(t, err)
	assert.Equal(t, catalog.TrackingNone, groomingProduct.Tracking)

	_, err = f.svc.CreateService(ctx, CreateServiceRequest{
		Name: "Mystery", Type: "procedure", Price: decimal.NewFromInt(1),
	})
	require.Error(t, err)
	assert.True(t, shared.IsDomainError(err, shared.CodeValidation))
}

func TestRegistryService_UpdateServicePrice_SyncsProduct(t *testing.T) {
	ctx := context.Background()
	f := newRegistryFixture()

	svc, err := f.svc.CreateService(ctx, CreateServiceRequest{
		Name: "Grooming", Type: "service", Price: decimal.NewFromInt(800),
	})
	require.NoError(t, err)

	svc, err = f.svc.UpdateServicePrice(ctx, svc.GetID(), decimal.NewFromInt(950))
	require.NoError(t, err)
	assert.True(t, svc.Price.Equal(decimal.NewFromInt(950)))

	product, err := f.productRepo.FindByID(ctx, svc.ProductID)
	require.NoError(t, err)
	assert.True(t, product.ListPrice.Equal(decimal.NewFromInt(950)))
}

func TestRegistryService_MarkServiceAsCombo(t *testing.T) {
	ctx := context.Background()
	f := newRegistryFixture()

	combo, err := f.svc.CreateService(ctx, CreateServiceRequest{
		Name: "Full Blood Panel", Type: "test", Price: decimal.NewFromInt(2500),
	})
	require.NoError(t, err)

	cbc, err := catalog.NewProduct("CBC", decimal.NewFromInt(600), catalog.TrackingNone)
	require.NoError(t, err)
	require.NoError(t, f.productRepo.Save(ctx, cbc))

	// components must exist
	_, err = f.svc.MarkServiceAsCombo(ctx, combo.GetID(), []uuid.UUID{cbc.GetID(), uuid.New()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "do not exist")

	combo, err = f.svc.MarkServiceAsCombo(ctx, combo.GetID(), []uuid.UUID{cbc.GetID()})
	require.NoError(t, err)
	assert.True(t, combo.IsCombo)
	require.Len(t, combo.ComponentProductIDs, 1)

	// only test services can be combos
	grooming, err := f.svc.CreateService(ctx, CreateServiceRequest{
		Name: "Grooming", Type: "service", Price: decimal.NewFromInt(800),
	})
	require.NoError(t, err)
	_, err = f.svc.MarkServiceAsCombo(ctx, grooming.GetID(), []uuid.UUID{cbc.GetID()})
	require.Error(t, err)
}
