package visit

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

	"github.com/vetclinic/backend/internal/domain/billing"
	"github.com/vetclinic/backend/internal/domain/clinic"
	"github.com/vetclinic/backend/internal/domain/identity"
	"github.com/vetclinic/backend/internal/domain/shared"
	"github.com/vetclinic/backend/internal/domain/shared/valueobject"
	domainvisit "github.com/vetclinic/backend/internal/domain/visit"
)

type stubVisitRepo struct {
	visits map[uuid.UUID]*domainvisit.Visit
}

func (r *stubVisitRepo) FindByID(_ context.Context, id uuid.UUID) (*domainvisit.Visit, error) {
	v, ok := r.visits[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return v, nil
}

func (r *stubVisitRepo) FindByReference(_ context.Context, reference string) (*domainvisit.Visit, error) {
	for _, v := range r.visits {
		if v.Reference == reference {
			return v, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *stubVisitRepo) FindByAnimal(_ context.Context, animalID uuid.UUID) ([]*domainvisit.Visit, error) {
	var out []*domainvisit.Visit
	for _, v := range r.visits {
		if v.AnimalID == animalID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (r *stubVisitRepo) Search(_ context.Context, query domainvisit.HistoryQuery) ([]*domainvisit.Visit, error) {
	var out []*domainvisit.Visit
	for _, v := range r.visits {
		if query.AnimalID != nil && v.AnimalID != *query.AnimalID {
			continue
		}
		if query.OwnerID != nil && v.OwnerID != *query.OwnerID {
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

func (r *stubVisitRepo) Save(_ context.Context, v *domainvisit.Visit) error {
	r.visits[v.GetID()] = v
	return nil
}

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

type stubInvoiceRepo struct {
	invoices map[uuid.UUID]*billing.Invoice
}

func (r *stubInvoiceRepo) FindByID(_ context.Context, id uuid.UUID) (*billing.Invoice, error) {
	inv, ok := r.invoices[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return inv, nil
}

func (r *stubInvoiceRepo) FindByVisit(_ context.Context, visitID uuid.UUID) ([]*billing.Invoice, error) {
	var out []*billing.Invoice
	for _, inv := range r.invoices {
		if inv.VisitID != nil && *inv.VisitID == visitID {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (r *stubInvoiceRepo) FindOutstandingByPartner(_ context.Context, partnerID uuid.UUID) ([]*billing.Invoice, error) {
	var out []*billing.Invoice
	for _, inv := range r.invoices {
		if inv.PartnerID == partnerID && inv.IsOutstanding() {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (r *stubInvoiceRepo) FindPostedBetween(_ context.Context, from, to time.Time) ([]*billing.Invoice, error) {
	return nil, nil
}

func (r *stubInvoiceRepo) Save(_ context.Context, inv *billing.Invoice) error {
	r.invoices[inv.GetID()] = inv
	return nil
}

type stubSequences struct {
	n int
}

func (s *stubSequences) Next(_ context.Context, code string) (string, error) {
	s.n++
	return fmt.Sprintf("VIS%05d", 9000+s.n), nil
}

type visitFixture struct {
	svc         *VisitService
	visitRepo   *stubVisitRepo
	invoiceRepo *stubInvoiceRepo
	animal      *clinic.Animal
	owner       *clinic.Owner
	doctor      *clinic.Doctor
	grooming    *clinic.Service
	vaccination *clinic.Service
	branchID    uuid.UUID
}

func newVisitFixture(t *testing.T) *visitFixture {
	t.Helper()
	ctx := context.Background()
	f := &visitFixture{
		visitRepo:   &stubVisitRepo{visits: make(map[uuid.UUID]*domainvisit.Visit)},
		invoiceRepo: &stubInvoiceRepo{invoices: make(map[uuid.UUID]*billing.Invoice)},
		branchID:    uuid.New(),
	}
	animalRepo := &stubAnimalRepo{animals: make(map[uuid.UUID]*clinic.Animal)}
	ownerRepo := &stubOwnerRepo{owners: make(map[uuid.UUID]*clinic.Owner)}
	doctorRepo := &stubDoctorRepo{doctors: make(map[uuid.UUID]*clinic.Doctor)}
	serviceRepo := &stubServiceRepo{services: make(map[uuid.UUID]*clinic.Service)}

	owner, err := clinic.NewOwner("Karim Rahman", "01712345678")
	require.NoError(t, err)
	require.NoError(t, ownerRepo.Save(ctx, owner))
	f.owner = owner

	animal, err := clinic.NewAnimal("HT000201", "Tommy", clinic.SpeciesDog, owner.GetID())
	require.NoError(t, err)
	require.NoError(t, animalRepo.Save(ctx, animal))
	f.animal = animal

	doctor, err := clinic.NewDoctor("Dr. Hasan", "01811111111", f.branchID)
	require.NoError(t, err)
	require.NoError(t, doctorRepo.Save(ctx, doctor))
	f.doctor = doctor

	grooming, err := clinic.NewService("Grooming", clinic.ServiceTypeService, decimal.NewFromInt(800), uuid.New())
	require.NoError(t, err)
	require.NoError(t, serviceRepo.Save(ctx, grooming))
	f.grooming = grooming

	vaccination, err := clinic.NewService("Rabies Vaccine", clinic.ServiceTypeVaccine, decimal.NewFromInt(1200), uuid.New())
	require.NoError(t, err)
	require.NoError(t, serviceRepo.Save(ctx, vaccination))
	f.vaccination = vaccination

	f.svc = NewVisitService(
		f.visitRepo, animalRepo, ownerRepo, doctorRepo, serviceRepo,
		f.invoiceRepo, &stubSequences{}, zap.NewNop())
	return f
}

func TestVisitService_CreateVisit(t *testing.T) {
	ctx := context.Background()
	f := newVisitFixture(t)
	caller := identity.Caller{UserID: uuid.New()}

	doctorID := f.doctor.GetID()
	custom := decimal.NewFromInt(700)
	v, err := f.svc.CreateVisit(ctx, caller, CreateVisitRequest{
		AnimalID: f.animal.GetID(),
		DoctorID: &doctorID,
		Notes:    "annual checkup",
		Lines: []LineInput{
			{ServiceID: f.grooming.GetID(), Quantity: decimal.NewFromInt(1), UnitPrice: &custom},
			{ServiceID: f.vaccination.GetID(), Quantity: decimal.NewFromInt(1)},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "VIS09001", v.Reference)
	assert.Equal(t, domainvisit.StateDraft, v.State)
	// owner was derived from the animal
	assert.Equal(t, f.owner.GetID(), v.OwnerID)
	require.NotNil(t, v.BranchID)
	assert.Equal(t, f.branchID, *v.BranchID)
	require.Len(t, v.Lines, 2)
	// explicit price wins, otherwise the service price applies
	assert.True(t, v.Lines[0].UnitPrice.Equal(decimal.NewFromInt(700)))
	assert.True(t, v.Lines[1].UnitPrice.Equal(decimal.NewFromInt(1200)))
	assert.True(t, v.TotalAmount.Equal(decimal.NewFromInt(1900)))

	stored, err := f.visitRepo.FindByID(ctx, v.GetID())
	require.NoError(t, err)
	assert.Equal(t, v.Reference, stored.Reference)
}

func TestVisitService_CreateVisit_UnknownAnimal(t *testing.T) {
	ctx := context.Background()
	f := newVisitFixture(t)

	_, err := f.svc.CreateVisit(ctx, identity.Caller{UserID: uuid.New()}, CreateVisitRequest{
		AnimalID: uuid.New(),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestVisitService_CreateVisit_RestrictedCallerOtherBranch(t *testing.T) {
	ctx := context.Background()
	f := newVisitFixture(t)

	doctorID := f.doctor.GetID()
	caller := identity.Caller{UserID: uuid.New(), AllowedBranchIDs: []uuid.UUID{uuid.New()}}
	_, err := f.svc.CreateVisit(ctx, caller, CreateVisitRequest{
		AnimalID: f.animal.GetID(),
		DoctorID: &doctorID,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrForbidden)
}

func TestVisitService_UpdateCharges(t *testing.T) {
	ctx := context.Background()
	f := newVisitFixture(t)
	caller := identity.Caller{UserID: uuid.New()}

	v, err := f.svc.CreateVisit(ctx, caller, CreateVisitRequest{
		AnimalID: f.animal.GetID(),
		Lines:    []LineInput{{ServiceID: f.grooming.GetID(), Quantity: decimal.NewFromInt(1)}},
	})
	require.NoError(t, err)

	charge := decimal.NewFromInt(200)
	percent := decimal.NewFromInt(10)
	v, err = f.svc.UpdateCharges(ctx, caller, v.GetID(), UpdateChargesRequest{
		TreatmentCharge: &charge,
		DiscountPercent: &percent,
	})
	require.NoError(t, err)
	// (800 + 200) with 10% off
	assert.True(t, v.TotalAmount.Equal(decimal.NewFromInt(900)))

	// a fixed discount cannot join an active percent discount
	fixed := decimal.NewFromInt(50)
	_, err = f.svc.UpdateCharges(ctx, caller, v.GetID(), UpdateChargesRequest{
		DiscountFixed: &fixed,
	})
	require.Error(t, err)
	assert.True(t, shared.IsDomainError(err, shared.CodeValidation))
}

func TestVisitService_LinesLockedAfterConfirm(t *testing.T) {
	ctx := context.Background()
	f := newVisitFixture(t)
	caller := identity.Caller{UserID: uuid.New()}

	v, err := f.svc.CreateVisit(ctx, caller, CreateVisitRequest{
		AnimalID: f.animal.GetID(),
		Lines:    []LineInput{{ServiceID: f.grooming.GetID(), Quantity: decimal.NewFromInt(1)}},
	})
	require.NoError(t, err)

	v, err = f.svc.ConfirmVisit(ctx, caller, v.GetID())
	require.NoError(t, err)
	assert.Equal(t, domainvisit.StateConfirmed, v.State)

	_, err = f.svc.AddLine(ctx, caller, v.GetID(), LineInput{
		ServiceID: f.vaccination.GetID(), Quantity: decimal.NewFromInt(1),
	})
	require.Error(t, err)
	var fieldErr *domainvisit.FieldMutationError
	require.ErrorAs(t, err, &fieldErr)

	// notes stay editable in any state
	notes := "still editable"
	v, err = f.svc.UpdateCharges(ctx, caller, v.GetID(), UpdateChargesRequest{Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, "still editable", v.Notes)
}

func TestVisitService_CancelBlockedByPostedInvoice(t *testing.T) {
	ctx := context.Background()
	f := newVisitFixture(t)
	caller := identity.Caller{UserID: uuid.New()}

	v, err := f.svc.CreateVisit(ctx, caller, CreateVisitRequest{
		AnimalID: f.animal.GetID(),
		Lines:    []LineInput{{ServiceID: f.grooming.GetID(), Quantity: decimal.NewFromInt(1)}},
	})
	require.NoError(t, err)

	inv, err := billing.NewInvoice("INV09001", uuid.New(), time.Now(), v.Reference)
	require.NoError(t, err)
	line, err := billing.NewInvoiceLine(nil, "Grooming", decimal.NewFromInt(1), decimal.NewFromInt(800), decimal.Zero, uuid.New())
	require.NoError(t, err)
	require.NoError(t, inv.AddLine(line))
	require.NoError(t, inv.Post())
	inv.LinkVisit(v.GetID())
	require.NoError(t, f.invoiceRepo.Save(ctx, inv))

	_, err = f.svc.CancelVisit(ctx, caller, v.GetID())
	require.Error(t, err)
	assert.True(t, shared.IsDomainError(err, shared.CodeStateTransition))

	// once the invoice is cancelled the visit can follow
	require.NoError(t, inv.Cancel())
	require.NoError(t, f.invoiceRepo.Save(ctx, inv))
	v, err = f.svc.CancelVisit(ctx, caller, v.GetID())
	require.NoError(t, err)
	assert.Equal(t, domainvisit.StateCancel, v.State)
}

func TestVisitService_History(t *testing.T) {
	ctx := context.Background()
	f := newVisitFixture(t)
	caller := identity.Caller{UserID: uuid.New()}

	doctorID := f.doctor.GetID()
	branched, err := f.svc.CreateVisit(ctx, caller, CreateVisitRequest{
		AnimalID: f.animal.GetID(),
		DoctorID: &doctorID,
		Lines:    []LineInput{{ServiceID: f.grooming.GetID(), Quantity: decimal.NewFromInt(2)}},
	})
	require.NoError(t, err)

	_, err = f.svc.CreateVisit(ctx, caller, CreateVisitRequest{
		AnimalID: f.animal.GetID(),
		Lines:    []LineInput{{ServiceID: f.vaccination.GetID(), Quantity: decimal.NewFromInt(1)}},
	})
	require.NoError(t, err)

	animalID := f.animal.GetID()
	entries, err := f.svc.History(ctx, caller, domainvisit.HistoryQuery{AnimalID: &animalID})
	require.NoError(t, err)
	require.Len(t, entries, 2)

	for _, entry := range entries {
		if entry.VisitID == branched.GetID() {
			assert.Equal(t, "Dr. Hasan", entry.Doctor)
			require.Len(t, entry.Services, 1)
			assert.Equal(t, "Grooming", entry.Services[0].Name)
			assert.True(t, entry.Services[0].Amount.Equal(decimal.NewFromInt(1600)))
		}
	}

	// a restricted caller only sees visits on their own branches;
	// unbranched visits are hidden from them
	restricted := identity.Caller{UserID: uuid.New(), AllowedBranchIDs: []uuid.UUID{f.branchID}}
	entries, err = f.svc.History(ctx, restricted, domainvisit.HistoryQuery{AnimalID: &animalID})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Grooming", entries[0].Services[0].Name)
}
