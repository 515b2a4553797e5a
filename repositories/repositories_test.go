package repositories

import (
	"context"
	"errors"
	"testing"

	"p2h.app/database/testdb"
	"p2h.app/models"
	"p2h.app/pkg/queryparams"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedForm(t *testing.T, db *gorm.DB, mutate func(*models.P2HForm)) models.P2HForm {
	t.Helper()
	form := models.P2HForm{
		DriverNIK:      "3201000000000001",
		VehicleID:      uuid.New(),
		SupervisorID:   uuid.New(),
		InspectionDate: "2024-05-01",
		Shift:          models.ShiftDay,
		Status:         models.FormStatusPending,
	}
	if mutate != nil {
		mutate(&form)
	}
	require.NoError(t, db.Create(&form).Error)
	return form
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `50\%\_off\\`, escapeLike(`50%_off\`))
	assert.Equal(t, "budi", escapeLike("budi"))
}

func TestUniqueIDs(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	assert.Equal(t, []uuid.UUID{a, b}, uniqueIDs([]uuid.UUID{a, uuid.Nil, b, a}))
}

func TestTranslateError(t *testing.T) {
	assert.NoError(t, translateError(nil))
	assert.ErrorIs(t, translateError(gorm.ErrRecordNotFound), ErrNotFound)
	assert.ErrorIs(t, translateError(gorm.ErrDuplicatedKey), ErrDuplicate)
	other := errors.New("boom")
	assert.Equal(t, other, translateError(other))
}

func TestUpdateStatusIfPending_OnlyOnce(t *testing.T) {
	db := testdb.Open(t)
	repo := NewP2HFormRepository(db)
	ctx := context.Background()
	form := seedForm(t, db, nil)

	n, err := repo.UpdateStatusIfPending(ctx, form.ID, map[string]interface{}{"status": models.FormStatusApproved})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = repo.UpdateStatusIfPending(ctx, form.ID, map[string]interface{}{"status": models.FormStatusRejected})
	require.NoError(t, err)
	assert.Zero(t, n)

	stored, err := repo.FindByID(ctx, form.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FormStatusApproved, stored.Status)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFindPaginated_FiltersAndSortWhitelist(t *testing.T) {
	db := testdb.Open(t)
	repo := NewP2HFormRepository(db)
	ctx := context.Background()

	driverID := uuid.New()
	linked := seedForm(t, db, func(f *models.P2HForm) {
		f.DriverID = &driverID
		f.DriverNIK = "other"
		f.StartingMeter = 10
	})
	byNIK := seedForm(t, db, func(f *models.P2HForm) { f.StartingMeter = 30 })
	seedForm(t, db, func(f *models.P2HForm) {
		f.DriverNIK = "stranger"
		f.Status = models.FormStatusRejected
		f.StartingMeter = 20
	})

	params := queryparams.DefaultListParams("hm_km_awal")
	params.OrderBy = "asc"
	forms, total, err := repo.FindPaginated(ctx, FormFilter{DriverID: &driverID, DriverNIK: "3201000000000001"}, params)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, forms, 2)
	assert.Equal(t, linked.ID, forms[0].ID)
	assert.Equal(t, byNIK.ID, forms[1].ID)

	params = queryparams.DefaultListParams("id; DROP TABLE p2h_forms")
	_, total, err = repo.FindPaginated(ctx, FormFilter{Status: models.FormStatusRejected}, params)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	counts, err := repo.CountByStatus(ctx, FormFilter{})
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{models.FormStatusPending: 2, models.FormStatusRejected: 1}, counts)
}

func TestApprovedVehicleQueries(t *testing.T) {
	db := testdb.Open(t)
	repo := NewP2HFormRepository(db)
	ctx := context.Background()

	truck, light := uuid.New(), uuid.New()
	seedForm(t, db, func(f *models.P2HForm) {
		f.VehicleID = truck
		f.Status = models.FormStatusApproved
		f.InspectionDate = "2024-05-02"
	})
	seedForm(t, db, func(f *models.P2HForm) {
		f.VehicleID = truck
		f.Status = models.FormStatusApproved
		f.InspectionDate = "2024-04-30"
	})
	seedForm(t, db, func(f *models.P2HForm) {
		f.VehicleID = light
		f.InspectionDate = "2024-05-02"
	})

	today, err := repo.ApprovedVehicleIDsOn(ctx, "2024-05-02", []uuid.UUID{truck, light})
	require.NoError(t, err)
	assert.Equal(t, map[uuid.UUID]bool{truck: true}, today)

	latest, err := repo.LatestApprovedDates(ctx, []uuid.UUID{truck, light})
	require.NoError(t, err)
	assert.Equal(t, map[uuid.UUID]string{truck: "2024-05-02"}, latest)

	empty, err := repo.ApprovedVehicleIDsOn(ctx, "2024-05-02", []uuid.UUID{})
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestDetailRepository_UniquePerItem(t *testing.T) {
	db := testdb.Open(t)
	repo := NewP2HFormDetailRepository(db)
	ctx := context.Background()
	form := seedForm(t, db, nil)
	itemID := uuid.New()

	detail := []models.P2HFormDetail{{FormID: form.ID, InspectionItemID: itemID, Condition: models.ConditionRusak, Notes: "retak"}}
	require.NoError(t, repo.CreateBatch(ctx, detail))

	again := []models.P2HFormDetail{{FormID: form.ID, InspectionItemID: itemID, Condition: models.ConditionBaik}}
	assert.ErrorIs(t, repo.CreateBatch(ctx, again), ErrDuplicate)

	exists, err := repo.ExistsForForm(ctx, form.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	issues, err := repo.FormIDsWithCondition(ctx, []uuid.UUID{form.ID, uuid.New()}, models.ConditionRusak)
	require.NoError(t, err)
	assert.Equal(t, map[uuid.UUID]bool{form.ID: true}, issues)
}

func TestWithTx_RoutesQueriesThroughTheTransaction(t *testing.T) {
	db := testdb.Open(t)
	repo := NewP2HFormRepository(db)
	form := seedForm(t, db, nil)

	rollback := errors.New("rollback")
	err := db.Transaction(func(tx *gorm.DB) error {
		ctx := WithTx(context.Background(), tx)
		if _, err := repo.UpdateStatus(ctx, form.ID, map[string]interface{}{"status": models.FormStatusRejected}); err != nil {
			return err
		}
		locked, err := repo.FindByIDForUpdate(ctx, form.ID)
		if err != nil {
			return err
		}
		assert.Equal(t, models.FormStatusRejected, locked.Status)
		return rollback
	})
	require.ErrorIs(t, err, rollback)

	stored, err := repo.FindByID(context.Background(), form.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FormStatusPending, stored.Status)
}

func TestSupervisorLookups(t *testing.T) {
	db := testdb.Open(t)
	repo := NewSupervisorRepository(db)
	ctx := context.Background()
	require.NoError(t, db.Create(&[]models.Supervisor{{Name: "Budi Santoso"}, {Name: "Budi_Hartono"}, {Name: "Sari"}}).Error)

	exact, err := repo.FindByNameExact(ctx, "SARI")
	require.NoError(t, err)
	assert.Equal(t, "Sari", exact.Name)

	contains, err := repo.FindByNameContains(ctx, "budi")
	require.NoError(t, err)
	assert.Equal(t, "Budi Santoso", contains.Name)

	literal, err := repo.FindByNameContains(ctx, "i_h")
	require.NoError(t, err)
	assert.Equal(t, "Budi_Hartono", literal.Name)

	_, err = repo.FindByNameContains(ctx, "i h")
	assert.ErrorIs(t, err, ErrNotFound)

	found, err := repo.Search(ctx, "bud", 1)
	require.NoError(t, err)
	assert.Len(t, found, 1)
}

func TestVehicleTypeLookups(t *testing.T) {
	db := testdb.Open(t)
	repo := NewVehicleRepository(db)
	ctx := context.Background()

	_, err := repo.FindTypeByName(ctx, "Excavator")
	assert.ErrorIs(t, err, ErrNotFound)

	vt := models.VehicleType{Name: "Excavator"}
	require.NoError(t, repo.CreateType(ctx, &vt))
	assert.NotEqual(t, uuid.Nil, vt.ID)

	found, err := repo.FindTypeByName(ctx, "Excavator")
	require.NoError(t, err)
	assert.Equal(t, vt.ID, found.ID)

	assert.ErrorIs(t, repo.CreateType(ctx, &models.VehicleType{Name: "Excavator"}), ErrDuplicate)
}
