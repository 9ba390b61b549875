package handler

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	clinicapp "github.com/vetclinic/backend/internal/application/clinic"
)

func TestRegistryHandler_RegisterOwner(t *testing.T) {
	stack := newTestStack(t)

	w := stack.do(t, http.MethodPost, "/api/v1/owners", clinicapp.RegisterOwnerRequest{
		Name:          "Karim Rahman",
		ContactNumber: "017-1234 5678",
		Email:         "karim@example.com",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var owner OwnerResponse
	decodeData(t, w, &owner)
	assert.Equal(t, "Karim Rahman", owner.Name)
	assert.Equal(t, "01712345678", owner.ContactNumber)
	assert.True(t, owner.Active)
}

func TestRegistryHandler_RegisterOwnerDuplicatePhone(t *testing.T) {
	stack := newTestStack(t)

	first := stack.do(t, http.MethodPost, "/api/v1/owners", clinicapp.RegisterOwnerRequest{
		Name: "Karim Rahman", ContactNumber: "01712345678",
	})
	require.Equal(t, http.StatusCreated, first.Code)

	second := stack.do(t, http.MethodPost, "/api/v1/owners", clinicapp.RegisterOwnerRequest{
		Name: "Other Person", ContactNumber: "01712345678",
	})
	require.Equal(t, http.StatusBadRequest, second.Code)
	assert.Equal(t, "VALIDATION_ERROR", decodeErrorCode(t, second))
}

func TestRegistryHandler_RegisterAndGetAnimal(t *testing.T) {
	stack := newTestStack(t)

	var owner OwnerResponse
	decodeData(t, stack.do(t, http.MethodPost, "/api/v1/owners", clinicapp.RegisterOwnerRequest{
		Name: "Karim Rahman", ContactNumber: "01712345678",
	}), &owner)

	w := stack.do(t, http.MethodPost, "/api/v1/animals", clinicapp.RegisterAnimalRequest{
		Name:    "Tommy",
		Species: "dog",
		Breed:   "Labrador",
		OwnerID: owner.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var animal AnimalResponse
	decodeData(t, w, &animal)
	assert.Equal(t, "Tommy", animal.Name)
	assert.NotEmpty(t, animal.MicrochipNo, "microchip number is allocated when none is supplied")

	got := stack.do(t, http.MethodGet, "/api/v1/animals/"+animal.ID.String(), nil)
	require.Equal(t, http.StatusOK, got.Code)
}

func TestRegistryHandler_SearchAnimals(t *testing.T) {
	stack := newTestStack(t)

	var owner OwnerResponse
	decodeData(t, stack.do(t, http.MethodPost, "/api/v1/owners", clinicapp.RegisterOwnerRequest{
		Name: "Karim Rahman", ContactNumber: "01712345678",
	}), &owner)

	var tommy, tiger AnimalResponse
	decodeData(t, stack.do(t, http.MethodPost, "/api/v1/animals", clinicapp.RegisterAnimalRequest{
		Name: "Tommy", Species: "dog", OwnerID: owner.ID,
	}), &tommy)
	decodeData(t, stack.do(t, http.MethodPost, "/api/v1/animals", clinicapp.RegisterAnimalRequest{
		Name: "Tiger", Species: "cat", OwnerID: owner.ID,
	}), &tiger)

	t.Run("matches names case-insensitively", func(t *testing.T) {
		w := stack.do(t, http.MethodGet, "/api/v1/animals?q=tom", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var animals []AnimalResponse
		decodeData(t, w, &animals)
		require.Len(t, animals, 1)
		assert.Equal(t, tommy.ID, animals[0].ID)
		assert.Equal(t, "Tommy #"+tommy.MicrochipNo, animals[0].DisplayName)
	})

	t.Run("exact microchip with # prefix", func(t *testing.T) {
		w := stack.do(t, http.MethodGet, "/api/v1/animals?q=%23"+tiger.MicrochipNo, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var animals []AnimalResponse
		decodeData(t, w, &animals)
		require.Len(t, animals, 1)
		assert.Equal(t, tiger.ID, animals[0].ID)
	})

	t.Run("unknown microchip yields empty list", func(t *testing.T) {
		w := stack.do(t, http.MethodGet, "/api/v1/animals?q=%23HT999999", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var animals []AnimalResponse
		decodeData(t, w, &animals)
		assert.Empty(t, animals)
	})

	t.Run("microchip prefix wins over name match", func(t *testing.T) {
		w := stack.do(t, http.MethodGet, "/api/v1/animals?q=HT", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var animals []AnimalResponse
		decodeData(t, w, &animals)
		assert.Len(t, animals, 2)
	})

	t.Run("missing query is rejected", func(t *testing.T) {
		w := stack.do(t, http.MethodGet, "/api/v1/animals", nil)
		require.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestRegistryHandler_GetAnimalNotFound(t *testing.T) {
	stack := newTestStack(t)

	w := stack.do(t, http.MethodGet, "/api/v1/animals/"+uuid.NewString(), nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", decodeErrorCode(t, w))

	bad := stack.do(t, http.MethodGet, "/api/v1/animals/not-a-uuid", nil)
	require.Equal(t, http.StatusBadRequest, bad.Code)
}

func TestRegistryHandler_ServiceLifecycle(t *testing.T) {
	stack := newTestStack(t)

	w := stack.do(t, http.MethodPost, "/api/v1/services", clinicapp.CreateServiceRequest{
		Name:  "Grooming",
		Type:  "service",
		Price: decimal.NewFromInt(800),
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var svc ServiceResponse
	decodeData(t, w, &svc)
	assert.Equal(t, "Grooming", svc.Name)
	assert.True(t, svc.Price.Equal(decimal.NewFromInt(800)))
	assert.NotEqual(t, uuid.Nil, svc.ProductID, "a backing product is provisioned")

	priced := stack.do(t, http.MethodPut, "/api/v1/services/"+svc.ID.String()+"/price", UpdateServicePriceRequest{
		Price: decimal.NewFromInt(900),
	})
	require.Equal(t, http.StatusOK, priced.Code)

	var updated ServiceResponse
	decodeData(t, priced, &updated)
	assert.True(t, updated.Price.Equal(decimal.NewFromInt(900)))

	list := stack.do(t, http.MethodGet, "/api/v1/services", nil)
	require.Equal(t, http.StatusOK, list.Code)

	var services []ServiceResponse
	decodeData(t, list, &services)
	require.Len(t, services, 1)
}

func TestRegistryHandler_MarkComboRejectsUnknownProducts(t *testing.T) {
	stack := newTestStack(t)

	var svc ServiceResponse
	decodeData(t, stack.do(t, http.MethodPost, "/api/v1/services", clinicapp.CreateServiceRequest{
		Name:  "Blood Panel",
		Type:  "test",
		Price: decimal.NewFromInt(1500),
	}), &svc)

	w := stack.do(t, http.MethodPut, "/api/v1/services/"+svc.ID.String()+"/combo", MarkComboRequest{
		ComponentProductIDs: []uuid.UUID{uuid.New()},
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", decodeErrorCode(t, w))
}
