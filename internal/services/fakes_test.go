package services

import (
	"database/sql"
	"time"

	"gym_crm_backend/internal/models"
	"gym_crm_backend/internal/repositories"
)

// The fakes below stand in for the SQL repositories. They keep their rows in
// maps and ignore the executor argument, so services can be constructed with
// a nil *sql.DB. Where the schema enforces an invariant with a partial unique
// index or a conditional UPDATE, the fake mirrors that behavior so the
// service-level error mapping can be exercised.

type fakeMemberRepo struct {
	members map[int64]*models.Member
	nextID  int64
}

func newFakeMemberRepo() *fakeMemberRepo {
	return &fakeMemberRepo{members: make(map[int64]*models.Member), nextID: 1}
}

func (f *fakeMemberRepo) add(member *models.Member) *models.Member {
	if member.ID == 0 {
		member.ID = f.nextID
		f.nextID++
	}
	f.members[member.ID] = member
	return member
}

func (f *fakeMemberRepo) CreateMember(_ repositories.SQLExecutor, member *models.Member) (int64, error) {
	f.add(member)
	return member.ID, nil
}

func (f *fakeMemberRepo) GetMemberByID(id int64) (*models.Member, error) {
	member, ok := f.members[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *member
	return &copied, nil
}

func (f *fakeMemberRepo) GetMembers(_ models.MemberFilters) ([]models.Member, int, error) {
	out := make([]models.Member, 0, len(f.members))
	for _, member := range f.members {
		out = append(out, *member)
	}
	return out, len(out), nil
}

func (f *fakeMemberRepo) UpdateMember(_ repositories.SQLExecutor, member *models.Member) error {
	if _, ok := f.members[member.ID]; !ok {
		return repositories.ErrNotFound
	}
	f.members[member.ID] = member
	return nil
}

func (f *fakeMemberRepo) DeleteMember(_ repositories.SQLExecutor, id int64) error {
	if _, ok := f.members[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.members, id)
	return nil
}

func (f *fakeMemberRepo) ConsumeSession(_ repositories.SQLExecutor, memberID int64) (bool, error) {
	member, ok := f.members[memberID]
	if !ok || member.RemainingSessions <= 0 {
		return false, nil
	}
	member.RemainingSessions--
	return true, nil
}

type fakePlanRepo struct {
	plans  map[int64]*models.Plan
	nextID int64
}

func newFakePlanRepo() *fakePlanRepo {
	return &fakePlanRepo{plans: make(map[int64]*models.Plan), nextID: 1}
}

func (f *fakePlanRepo) add(plan *models.Plan) *models.Plan {
	if plan.ID == 0 {
		plan.ID = f.nextID
		f.nextID++
	}
	f.plans[plan.ID] = plan
	return plan
}

func (f *fakePlanRepo) CreatePlan(_ repositories.SQLExecutor, plan *models.Plan) (int64, error) {
	f.add(plan)
	return plan.ID, nil
}

func (f *fakePlanRepo) GetPlanByID(id int64) (*models.Plan, error) {
	plan, ok := f.plans[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *plan
	return &copied, nil
}

func (f *fakePlanRepo) GetPlans() ([]models.Plan, error) {
	out := make([]models.Plan, 0, len(f.plans))
	for _, plan := range f.plans {
		out = append(out, *plan)
	}
	return out, nil
}

func (f *fakePlanRepo) UpdatePlan(_ repositories.SQLExecutor, plan *models.Plan) error {
	if _, ok := f.plans[plan.ID]; !ok {
		return repositories.ErrNotFound
	}
	f.plans[plan.ID] = plan
	return nil
}

type fakeCheckInRepo struct {
	records map[int64]*models.CheckInRecord
	nextID  int64
}

func newFakeCheckInRepo() *fakeCheckInRepo {
	return &fakeCheckInRepo{records: make(map[int64]*models.CheckInRecord), nextID: 1}
}

func (f *fakeCheckInRepo) WithTransaction(fn func(tx *sql.Tx) error) error {
	return fn(nil)
}

func (f *fakeCheckInRepo) CreateCheckIn(_ repositories.SQLExecutor, record *models.CheckInRecord) (*models.CheckInRecord, error) {
	for _, existing := range f.records {
		if existing.MemberID == record.MemberID && existing.StoreID == record.StoreID && existing.IsOpen() {
			return nil, repositories.ErrDuplicateKey
		}
	}
	record.ID = f.nextID
	f.nextID++
	record.CreatedAt = record.CheckedInAt
	stored := *record
	f.records[record.ID] = &stored
	copied := stored
	return &copied, nil
}

func (f *fakeCheckInRepo) GetCheckInByID(id int64) (*models.CheckInRecord, error) {
	record, ok := f.records[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *record
	return &copied, nil
}

func (f *fakeCheckInRepo) FindOpenCheckIn(_ repositories.SQLExecutor, memberID, storeID int64, _ bool) (*models.CheckInRecord, error) {
	for _, record := range f.records {
		if record.MemberID == memberID && record.StoreID == storeID && record.IsOpen() {
			copied := *record
			return &copied, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeCheckInRepo) CloseCheckIn(_ repositories.SQLExecutor, id int64, checkedOutAt time.Time) (*models.CheckInRecord, error) {
	record, ok := f.records[id]
	if !ok || !record.IsOpen() {
		return nil, repositories.ErrNotFound
	}
	out := checkedOutAt
	record.CheckedOutAt = &out
	copied := *record
	return &copied, nil
}

func (f *fakeCheckInRepo) GetOpenCheckIns(storeID int64) ([]models.CheckInRecord, error) {
	out := []models.CheckInRecord{}
	for _, record := range f.records {
		if record.StoreID == storeID && record.IsOpen() {
			out = append(out, *record)
		}
	}
	return out, nil
}

func (f *fakeCheckInRepo) GetCheckInsForDay(storeID int64, dayStart, dayEnd time.Time) ([]models.CheckInRecord, error) {
	out := []models.CheckInRecord{}
	for _, record := range f.records {
		if record.StoreID == storeID && !record.CheckedInAt.Before(dayStart) && record.CheckedInAt.Before(dayEnd) {
			out = append(out, *record)
		}
	}
	return out, nil
}

type fakeReservationRepo struct {
	reservations map[int64]*models.Reservation
	nextID       int64
}

func newFakeReservationRepo() *fakeReservationRepo {
	return &fakeReservationRepo{reservations: make(map[int64]*models.Reservation), nextID: 1}
}

func (f *fakeReservationRepo) WithTransaction(fn func(tx *sql.Tx) error) error {
	return fn(nil)
}

func (f *fakeReservationRepo) CreateReservation(_ repositories.SQLExecutor, reservation *models.Reservation) (*models.Reservation, error) {
	for _, existing := range f.reservations {
		if existing.MemberID == reservation.MemberID && existing.Date == reservation.Date &&
			existing.StartTime == reservation.StartTime && existing.Status == models.ReservationStatusConfirmed {
			return nil, repositories.ErrDuplicateKey
		}
	}
	reservation.ID = f.nextID
	f.nextID++
	reservation.CreatedAt = time.Now()
	reservation.UpdatedAt = reservation.CreatedAt
	stored := *reservation
	f.reservations[reservation.ID] = &stored
	copied := stored
	return &copied, nil
}

func (f *fakeReservationRepo) GetReservationByID(id int64) (*models.Reservation, error) {
	reservation, ok := f.reservations[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *reservation
	return &copied, nil
}

func (f *fakeReservationRepo) GetReservations(_ models.ReservationFilters) ([]models.Reservation, int, error) {
	out := make([]models.Reservation, 0, len(f.reservations))
	for _, reservation := range f.reservations {
		out = append(out, *reservation)
	}
	return out, len(out), nil
}

func (f *fakeReservationRepo) UpdateReservationStatus(_ repositories.SQLExecutor, id int64, from, to models.ReservationStatus, cancelReason, notes *string) (*models.Reservation, error) {
	reservation, ok := f.reservations[id]
	if !ok || reservation.Status != from {
		return nil, repositories.ErrNotFound
	}
	reservation.Status = to
	reservation.UpdatedAt = time.Now()
	if cancelReason != nil {
		reservation.CancelReason = cancelReason
	}
	if notes != nil {
		reservation.Notes = notes
	}
	copied := *reservation
	return &copied, nil
}

func (f *fakeReservationRepo) GetReservationsForDay(storeID int64, date string) ([]models.Reservation, error) {
	out := []models.Reservation{}
	for _, reservation := range f.reservations {
		if reservation.StoreID == storeID && reservation.Date == date {
			out = append(out, *reservation)
		}
	}
	return out, nil
}

func (f *fakeReservationRepo) GetRecentTerminations(storeID int64, since time.Time) ([]models.Reservation, error) {
	out := []models.Reservation{}
	for _, reservation := range f.reservations {
		if reservation.StoreID == storeID && reservation.Status.IsTerminal() && !reservation.UpdatedAt.Before(since) {
			out = append(out, *reservation)
		}
	}
	return out, nil
}

type fakeStoreRepo struct {
	stores      map[int64]*models.Store
	assignments []*models.StoreStaffAssignment
	nextID      int64
}

func newFakeStoreRepo() *fakeStoreRepo {
	return &fakeStoreRepo{stores: make(map[int64]*models.Store), nextID: 1}
}

func (f *fakeStoreRepo) add(store *models.Store) *models.Store {
	if store.ID == 0 {
		store.ID = f.nextID
		f.nextID++
	}
	f.stores[store.ID] = store
	return store
}

func (f *fakeStoreRepo) assign(userID, storeID int64, role models.StaffRole, active bool) {
	f.assignments = append(f.assignments, &models.StoreStaffAssignment{
		ID:       int64(len(f.assignments) + 1),
		UserID:   userID,
		StoreID:  storeID,
		Role:     role,
		IsActive: active,
	})
}

func (f *fakeStoreRepo) CreateStore(_ repositories.SQLExecutor, store *models.Store) (int64, error) {
	f.add(store)
	return store.ID, nil
}

func (f *fakeStoreRepo) GetStoreByID(id int64) (*models.Store, error) {
	store, ok := f.stores[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *store
	return &copied, nil
}

func (f *fakeStoreRepo) GetStoreByQRToken(token string) (*models.Store, error) {
	for _, store := range f.stores {
		if store.QRToken == token {
			copied := *store
			return &copied, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeStoreRepo) GetStores(activeOnly bool) ([]models.Store, error) {
	out := []models.Store{}
	for _, store := range f.stores {
		if activeOnly && !store.IsActive {
			continue
		}
		out = append(out, *store)
	}
	return out, nil
}

func (f *fakeStoreRepo) GetStoreIDs(activeOnly bool) ([]int64, error) {
	ids := []int64{}
	for _, store := range f.stores {
		if activeOnly && !store.IsActive {
			continue
		}
		ids = append(ids, store.ID)
	}
	return ids, nil
}

func (f *fakeStoreRepo) UpdateStore(_ repositories.SQLExecutor, store *models.Store) error {
	if _, ok := f.stores[store.ID]; !ok {
		return repositories.ErrNotFound
	}
	f.stores[store.ID] = store
	return nil
}

func (f *fakeStoreRepo) UpsertStaffAssignment(_ repositories.SQLExecutor, assignment *models.StoreStaffAssignment) (*models.StoreStaffAssignment, error) {
	for _, existing := range f.assignments {
		if existing.UserID == assignment.UserID && existing.StoreID == assignment.StoreID {
			existing.Role = assignment.Role
			existing.IsActive = true
			copied := *existing
			return &copied, nil
		}
	}
	assignment.ID = int64(len(f.assignments) + 1)
	assignment.IsActive = true
	f.assignments = append(f.assignments, assignment)
	copied := *assignment
	return &copied, nil
}

func (f *fakeStoreRepo) DeactivateStaffAssignment(_ repositories.SQLExecutor, userID, storeID int64) error {
	for _, existing := range f.assignments {
		if existing.UserID == userID && existing.StoreID == storeID && existing.IsActive {
			existing.IsActive = false
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (f *fakeStoreRepo) GetStaffAssignments(storeID int64) ([]models.StoreStaffAssignment, error) {
	out := []models.StoreStaffAssignment{}
	for _, existing := range f.assignments {
		if existing.StoreID == storeID {
			out = append(out, *existing)
		}
	}
	return out, nil
}

func (f *fakeStoreRepo) GetActiveAssignment(userID, storeID int64) (*models.StoreStaffAssignment, error) {
	for _, existing := range f.assignments {
		if existing.UserID == userID && existing.StoreID == storeID && existing.IsActive {
			copied := *existing
			return &copied, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeStoreRepo) GetActiveStoreIDsForUser(userID int64) ([]int64, error) {
	ids := []int64{}
	for _, existing := range f.assignments {
		if existing.UserID == userID && existing.IsActive {
			ids = append(ids, existing.StoreID)
		}
	}
	return ids, nil
}

type fakeTrainerRepo struct {
	trainers map[int64]*models.Trainer
	nextID   int64
}

func newFakeTrainerRepo() *fakeTrainerRepo {
	return &fakeTrainerRepo{trainers: make(map[int64]*models.Trainer), nextID: 1}
}

func (f *fakeTrainerRepo) add(trainer *models.Trainer) *models.Trainer {
	if trainer.ID == 0 {
		trainer.ID = f.nextID
		f.nextID++
	}
	f.trainers[trainer.ID] = trainer
	return trainer
}

func (f *fakeTrainerRepo) CreateTrainer(_ repositories.SQLExecutor, trainer *models.Trainer) (int64, error) {
	f.add(trainer)
	return trainer.ID, nil
}

func (f *fakeTrainerRepo) GetTrainerByID(id int64) (*models.Trainer, error) {
	trainer, ok := f.trainers[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *trainer
	return &copied, nil
}

func (f *fakeTrainerRepo) GetTrainersByStore(storeID int64, activeOnly bool) ([]models.Trainer, error) {
	out := []models.Trainer{}
	for _, trainer := range f.trainers {
		if trainer.StoreID != storeID {
			continue
		}
		if activeOnly && !trainer.IsActive {
			continue
		}
		out = append(out, *trainer)
	}
	return out, nil
}

func (f *fakeTrainerRepo) UpdateTrainer(_ repositories.SQLExecutor, trainer *models.Trainer) error {
	if _, ok := f.trainers[trainer.ID]; !ok {
		return repositories.ErrNotFound
	}
	f.trainers[trainer.ID] = trainer
	return nil
}

type fakeAuthRepo struct {
	users     map[int64]*models.User
	passwords map[string]string
	roles     map[string]*models.Role
	nextID    int64
}

func newFakeAuthRepo() *fakeAuthRepo {
	repo := &fakeAuthRepo{
		users:     make(map[int64]*models.User),
		passwords: make(map[string]string),
		roles:     make(map[string]*models.Role),
		nextID:    1,
	}
	for i, name := range []string{models.RoleOwner, models.RoleStaff, models.RoleMember} {
		repo.roles[name] = &models.Role{ID: int64(i + 1), Name: name}
	}
	return repo
}

func (f *fakeAuthRepo) CreateUser(_ repositories.SQLExecutor, user *models.User, hashedPassword string) (int64, error) {
	for _, existing := range f.users {
		if existing.Username == user.Username {
			return 0, repositories.ErrDuplicateKey
		}
	}
	user.ID = f.nextID
	f.nextID++
	user.IsActive = true
	if user.RoleID != nil {
		for _, role := range f.roles {
			if role.ID == *user.RoleID {
				user.Role = role
			}
		}
	}
	copied := *user
	f.users[user.ID] = &copied
	f.passwords[user.Username] = hashedPassword
	return user.ID, nil
}

func (f *fakeAuthRepo) FindUserByUsername(username string) (*models.User, string, error) {
	for _, user := range f.users {
		if user.Username == username {
			copied := *user
			return &copied, f.passwords[username], nil
		}
	}
	return nil, "", repositories.ErrNotFound
}

func (f *fakeAuthRepo) FindUserByID(userID int64) (*models.User, error) {
	user, ok := f.users[userID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (f *fakeAuthRepo) FindRoleByName(name string) (*models.Role, error) {
	role, ok := f.roles[name]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return role, nil
}
