package billing

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vetclinic/backend/internal/domain/billing"
	"github.com/vetclinic/backend/internal/domain/catalog"
	"github.com/vetclinic/backend/internal/domain/clinic"
	"github.com/vetclinic/backend/internal/domain/shared"
	"github.com/vetclinic/backend/internal/domain/shared/valueobject"
	domainvisit "github.com/vetclinic/backend/internal/domain/visit"
)

// In-memory repository fakes shared by the service tests in this package.

type memVisitRepo struct {
	mu     sync.Mutex
	visits map[uuid.UUID]*domainvisit.Visit
}

func newMemVisitRepo() *memVisitRepo {
	return &memVisitRepo{visits: make(map[uuid.UUID]*domainvisit.Visit)}
}

func (r *memVisitRepo) FindByID(_ context.Context, id uuid.UUID) (*domainvisit.Visit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.visits[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return v, nil
}

func (r *memVisitRepo) FindByReference(_ context.Context, reference string) (*domainvisit.Visit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range r.visits {
		if v.Reference == reference {
			return v, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memVisitRepo) FindByAnimal(_ context.Context, animalID uuid.UUID) ([]*domainvisit.Visit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domainvisit.Visit
	for _, v := range r.visits {
		if v.AnimalID == animalID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (r *memVisitRepo) Search(_ context.Context, query domainvisit.HistoryQuery) ([]*domainvisit.Visit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
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

func (r *memVisitRepo) Save(_ context.Context, v *domainvisit.Visit) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.visits[v.GetID()] = v
	return nil
}

type memOwnerRepo struct {
	owners map[uuid.UUID]*clinic.Owner
}

func newMemOwnerRepo() *memOwnerRepo {
	return &memOwnerRepo{owners: make(map[uuid.UUID]*clinic.Owner)}
}

func (r *memOwnerRepo) FindByID(_ context.Context, id uuid.UUID) (*clinic.Owner, error) {
	o, ok := r.owners[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return o, nil
}

func (r *memOwnerRepo) FindByContactNumber(_ context.Context, phone valueobject.Phone) (*clinic.Owner, error) {
	for _, o := range r.owners {
		if o.ContactNumber.Equals(phone) {
			return o, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memOwnerRepo) Save(_ context.Context, o *clinic.Owner) error {
	r.owners[o.GetID()] = o
	return nil
}

type memAnimalRepo struct {
	animals map[uuid.UUID]*clinic.Animal
}

func newMemAnimalRepo() *memAnimalRepo {
	return &memAnimalRepo{animals: make(map[uuid.UUID]*clinic.Animal)}
}

func (r *memAnimalRepo) FindByID(_ context.Context, id uuid.UUID) (*clinic.Animal, error) {
	a, ok := r.animals[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return a, nil
}

func (r *memAnimalRepo) FindByMicrochip(_ context.Context, microchipNo string) (*clinic.Animal, error) {
	for _, a := range r.animals {
		if a.MicrochipNo == microchipNo {
			return a, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memAnimalRepo) FindByOwner(_ context.Context, ownerID uuid.UUID) ([]*clinic.Animal, error) {
	var out []*clinic.Animal
	for _, a := range r.animals {
		if a.OwnerID == ownerID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *memAnimalRepo) SearchByName(_ context.Context, name string, limit int) ([]*clinic.Animal, error) {
	var out []*clinic.Animal
	for _, a := range r.animals {
		if len(out) >= limit {
			break
		}
		if strings.Contains(strings.ToLower(a.Name), strings.ToLower(name)) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *memAnimalRepo) SearchByMicrochipPrefix(_ context.Context, prefix string, limit int) ([]*clinic.Animal, error) {
	var out []*clinic.Animal
	for _, a := range r.animals {
		if len(out) >= limit {
			break
		}
		if strings.HasPrefix(a.MicrochipNo, prefix) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *memAnimalRepo) Save(_ context.Context, a *clinic.Animal) error {
	r.animals[a.GetID()] = a
	return nil
}

type memDoctorRepo struct {
	doctors map[uuid.UUID]*clinic.Doctor
}

func newMemDoctorRepo() *memDoctorRepo {
	return &memDoctorRepo{doctors: make(map[uuid.UUID]*clinic.Doctor)}
}

func (r *memDoctorRepo) FindByID(_ context.Context, id uuid.UUID) (*clinic.Doctor, error) {
	d, ok := r.doctors[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return d, nil
}

func (r *memDoctorRepo) FindByContactNumber(_ context.Context, phone valueobject.Phone) (*clinic.Doctor, error) {
	for _, d := range r.doctors {
		if d.ContactNumber.Equals(phone) {
			return d, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memDoctorRepo) FindByBranch(_ context.Context, branchID uuid.UUID) ([]*clinic.Doctor, error) {
	var out []*clinic.Doctor
	for _, d := range r.doctors {
		if d.BranchID == branchID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *memDoctorRepo) Save(_ context.Context, d *clinic.Doctor) error {
	r.doctors[d.GetID()] = d
	return nil
}

type memServiceRepo struct {
	services map[uuid.UUID]*clinic.Service
}

func newMemServiceRepo() *memServiceRepo {
	return &memServiceRepo{services: make(map[uuid.UUID]*clinic.Service)}
}

func (r *memServiceRepo) FindByID(_ context.Context, id uuid.UUID) (*clinic.Service, error) {
	s, ok := r.services[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return s, nil
}

func (r *memServiceRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]*clinic.Service, error) {
	var out []*clinic.Service
	for _, id := range ids {
		if s, ok := r.services[id]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *memServiceRepo) FindAll(_ context.Context) ([]*clinic.Service, error) {
	var out []*clinic.Service
	for _, s := range r.services {
		out = append(out, s)
	}
	return out, nil
}

func (r *memServiceRepo) Save(_ context.Context, s *clinic.Service) error {
	r.services[s.GetID()] = s
	return nil
}

type memProductRepo struct {
	products map[uuid.UUID]*catalog.Product
}

func newMemProductRepo() *memProductRepo {
	return &memProductRepo{products: make(map[uuid.UUID]*catalog.Product)}
}

func (r *memProductRepo) FindByID(_ context.Context, id uuid.UUID) (*catalog.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return p, nil
}

func (r *memProductRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]*catalog.Product, error) {
	var out []*catalog.Product
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memProductRepo) Save(_ context.Context, p *catalog.Product) error {
	r.products[p.GetID()] = p
	return nil
}

type memCategoryRepo struct {
	categories map[uuid.UUID]*catalog.ProductCategory
}

func newMemCategoryRepo() *memCategoryRepo {
	return &memCategoryRepo{categories: make(map[uuid.UUID]*catalog.ProductCategory)}
}

func (r *memCategoryRepo) FindByID(_ context.Context, id uuid.UUID) (*catalog.ProductCategory, error) {
	c, ok := r.categories[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return c, nil
}

func (r *memCategoryRepo) FindByName(_ context.Context, name string) (*catalog.ProductCategory, error) {
	for _, c := range r.categories {
		if c.Name == name {
			return c, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memCategoryRepo) Save(_ context.Context, c *catalog.ProductCategory) error {
	r.categories[c.GetID()] = c
	return nil
}

type memInvoiceRepo struct {
	invoices map[uuid.UUID]*billing.Invoice
}

func newMemInvoiceRepo() *memInvoiceRepo {
	return &memInvoiceRepo{invoices: make(map[uuid.UUID]*billing.Invoice)}
}

func (r *memInvoiceRepo) FindByID(_ context.Context, id uuid.UUID) (*billing.Invoice, error) {
	inv, ok := r.invoices[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return inv, nil
}

func (r *memInvoiceRepo) FindByVisit(_ context.Context, visitID uuid.UUID) ([]*billing.Invoice, error) {
	var out []*billing.Invoice
	for _, inv := range r.invoices {
		if inv.VisitID != nil && *inv.VisitID == visitID {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (r *memInvoiceRepo) FindOutstandingByPartner(_ context.Context, partnerID uuid.UUID) ([]*billing.Invoice, error) {
	var out []*billing.Invoice
	for _, inv := range r.invoices {
		if inv.PartnerID == partnerID && inv.IsOutstanding() {
			out = append(out, inv)
		}
	}
	billing.SortOutstanding(out)
	return out, nil
}

func (r *memInvoiceRepo) FindPostedBetween(_ context.Context, from, to time.Time) ([]*billing.Invoice, error) {
	var out []*billing.Invoice
	for _, inv := range r.invoices {
		if inv.State == billing.InvoiceStatePosted && !inv.InvoiceDate.Before(from) && !inv.InvoiceDate.After(to) {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (r *memInvoiceRepo) Save(_ context.Context, inv *billing.Invoice) error {
	r.invoices[inv.GetID()] = inv
	return nil
}

type memPartnerRepo struct {
	partners map[uuid.UUID]*billing.BillingPartner
}

func newMemPartnerRepo() *memPartnerRepo {
	return &memPartnerRepo{partners: make(map[uuid.UUID]*billing.BillingPartner)}
}

func (r *memPartnerRepo) FindByID(_ context.Context, id uuid.UUID) (*billing.BillingPartner, error) {
	p, ok := r.partners[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return p, nil
}

func (r *memPartnerRepo) FindByOwner(_ context.Context, ownerID uuid.UUID) (*billing.BillingPartner, error) {
	for _, p := range r.partners {
		if p.OwnerID == ownerID {
			return p, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memPartnerRepo) Save(_ context.Context, p *billing.BillingPartner) error {
	r.partners[p.GetID()] = p
	return nil
}

type memAccountRepo struct {
	accounts map[uuid.UUID]*billing.Account
}

func newMemAccountRepo() *memAccountRepo {
	return &memAccountRepo{accounts: make(map[uuid.UUID]*billing.Account)}
}

func (r *memAccountRepo) FindByID(_ context.Context, id uuid.UUID) (*billing.Account, error) {
	a, ok := r.accounts[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return a, nil
}

func (r *memAccountRepo) FirstByType(_ context.Context, accountType billing.AccountType) (*billing.Account, error) {
	for _, a := range r.accounts {
		if a.Type == accountType && a.Active {
			return a, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memAccountRepo) Save(_ context.Context, a *billing.Account) error {
	r.accounts[a.GetID()] = a
	return nil
}

type memJournalRepo struct {
	journals map[uuid.UUID]*billing.Journal
}

func newMemJournalRepo() *memJournalRepo {
	return &memJournalRepo{journals: make(map[uuid.UUID]*billing.Journal)}
}

func (r *memJournalRepo) FindByID(_ context.Context, id uuid.UUID) (*billing.Journal, error) {
	j, ok := r.journals[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return j, nil
}

func (r *memJournalRepo) FirstByType(_ context.Context, journalType billing.JournalType) (*billing.Journal, error) {
	for _, j := range r.journals {
		if j.Type == journalType && j.Active {
			return j, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memJournalRepo) Save(_ context.Context, j *billing.Journal) error {
	r.journals[j.GetID()] = j
	return nil
}

type memPaymentRepo struct {
	payments map[uuid.UUID]*billing.Payment
}

func newMemPaymentRepo() *memPaymentRepo {
	return &memPaymentRepo{payments: make(map[uuid.UUID]*billing.Payment)}
}

func (r *memPaymentRepo) FindByID(_ context.Context, id uuid.UUID) (*billing.Payment, error) {
	p, ok := r.payments[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return p, nil
}

func (r *memPaymentRepo) FindByVisit(_ context.Context, visitID uuid.UUID) ([]*billing.Payment, error) {
	var out []*billing.Payment
	for _, p := range r.payments {
		if p.VisitID != nil && *p.VisitID == visitID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memPaymentRepo) Save(_ context.Context, p *billing.Payment) error {
	r.payments[p.GetID()] = p
	return nil
}

// fakeSequences hands out deterministic numbered references
type fakeSequences struct {
	mu       sync.Mutex
	counters map[string]int
}

func newFakeSequences() *fakeSequences {
	return &fakeSequences{counters: make(map[string]int)}
}

func (s *fakeSequences) Next(_ context.Context, code string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters[code]++
	prefix := map[string]string{
		shared.SequenceVisit:     "VIS",
		shared.SequenceMicrochip: "HT",
		shared.SequenceInvoice:   "INV",
		shared.SequencePayment:   "PAY",
	}[code]
	return fmt.Sprintf("%s%05d", prefix, s.counters[code]), nil
}

// fakeLedger records calls; structured registration can be forced to fail
type fakeLedger struct {
	failStructured  bool
	failReconcile   bool
	registered      []string
	manualEntries   []billing.ManualEntry
	reconciledCalls int
}

func (l *fakeLedger) RegisterPayment(_ context.Context, invoice *billing.Invoice, _ valueobject.Money, _ *billing.Journal, _ *billing.BillingPartner) error {
	if l.failStructured {
		return fmt.Errorf("payment register rejected")
	}
	l.registered = append(l.registered, invoice.Number)
	return nil
}

func (l *fakeLedger) PostManualEntry(_ context.Context, entry billing.ManualEntry) error {
	l.manualEntries = append(l.manualEntries, entry)
	return nil
}

func (l *fakeLedger) Reconcile(_ context.Context, _ uuid.UUID, _ string) error {
	l.reconciledCalls++
	if l.failReconcile {
		return fmt.Errorf("no matching receivable line")
	}
	return nil
}

// fakeRenderer captures the receipt data and returns a canned document
type fakeRenderer struct {
	last billing.ReceiptData
}

func (r *fakeRenderer) RenderVisitReceipt(_ context.Context, data billing.ReceiptData) ([]byte, error) {
	r.last = data
	return []byte("receipt:" + data.VisitReference), nil
}

// fakeDeliverer records deliveries and can be forced to fail
type fakeDeliverer struct {
	fail     bool
	requests []billing.DeliveryRequest
}

func (d *fakeDeliverer) Deliver(_ context.Context, requests []billing.DeliveryRequest) error {
	if d.fail {
		return fmt.Errorf("warehouse not configured")
	}
	d.requests = append(d.requests, requests...)
	return nil
}
