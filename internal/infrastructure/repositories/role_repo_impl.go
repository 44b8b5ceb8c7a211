package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"avilegal.backend/internal/domain/entities"
	domainerrors "avilegal.backend/internal/domain/errors"
	"avilegal.backend/internal/infrastructure/models"
	"avilegal.backend/pkg/utils"
)

// RoleRepository implements role and permission data operations
type RoleRepository struct {
	db *gorm.DB
}

// NewRoleRepository creates a new role repository
func NewRoleRepository(db *gorm.DB) *RoleRepository {
	return &RoleRepository{db: db}
}

func (r *RoleRepository) Create(ctx context.Context, role *entities.Role) error {
	if role.ID == uuid.Nil {
		role.ID = utils.GenerateUUIDv7()
	}
	m := &models.Role{
		ID:          role.ID,
		Name:        role.Name,
		DisplayName: role.DisplayName,
		Description: role.Description,
		IsSystem:    role.IsSystem,
	}
	if err := GetDB(ctx, r.db).Create(m).Error; err != nil {
		return err
	}
	role.CreatedAt = m.CreatedAt
	role.UpdatedAt = m.UpdatedAt
	return nil
}

// GetByID returns the role with permissions and user count
func (r *RoleRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Role, error) {
	return r.getOne(ctx, "id = ?", id)
}

func (r *RoleRepository) GetByName(ctx context.Context, name string) (*entities.Role, error) {
	return r.getOne(ctx, "name = ?", name)
}

func (r *RoleRepository) getOne(ctx context.Context, query string, arg interface{}) (*entities.Role, error) {
	var m models.Role
	if err := GetDB(ctx, r.db).Where(query, arg).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	roles, err := r.hydrate(ctx, []models.Role{m})
	if err != nil {
		return nil, err
	}
	return roles[0], nil
}

// List returns all roles by name with permissions and user counts
func (r *RoleRepository) List(ctx context.Context) ([]*entities.Role, error) {
	var rows []models.Role
	if err := GetDB(ctx, r.db).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return r.hydrate(ctx, rows)
}

func (r *RoleRepository) hydrate(ctx context.Context, rows []models.Role) ([]*entities.Role, error) {
	out := make([]*entities.Role, 0, len(rows))
	if len(rows) == 0 {
		return out, nil
	}
	db := GetDB(ctx, r.db)

	ids := make([]uuid.UUID, 0, len(rows))
	for _, m := range rows {
		ids = append(ids, m.ID)
	}

	var perms []struct {
		models.Permission
		RoleID uuid.UUID
	}
	if err := db.Table("permissions").
		Select("permissions.*, role_permissions.role_id").
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Where("role_permissions.role_id IN ?", ids).
		Order("permissions.name").
		Scan(&perms).Error; err != nil {
		return nil, err
	}
	permsByRole := make(map[uuid.UUID][]entities.Permission, len(rows))
	for i := range perms {
		permsByRole[perms[i].RoleID] = append(permsByRole[perms[i].RoleID], permissionToEntity(&perms[i].Permission))
	}

	var counts []struct {
		RoleID uuid.UUID
		Total  int64
	}
	if err := db.Model(&models.UserRole{}).
		Select("user_roles.role_id, COUNT(*) AS total").
		Joins("JOIN users ON users.id = user_roles.user_id AND users.deleted_at IS NULL").
		Where("user_roles.role_id IN ?", ids).
		Group("user_roles.role_id").
		Scan(&counts).Error; err != nil {
		return nil, err
	}
	countByRole := make(map[uuid.UUID]int64, len(counts))
	for _, c := range counts {
		countByRole[c.RoleID] = c.Total
	}

	for i := range rows {
		role := roleToEntity(&rows[i])
		role.Permissions = permsByRole[role.ID]
		if role.Permissions == nil {
			role.Permissions = []entities.Permission{}
		}
		role.UsersCount = countByRole[role.ID]
		out = append(out, role)
	}
	return out, nil
}

func (r *RoleRepository) Update(ctx context.Context, role *entities.Role) error {
	result := GetDB(ctx, r.db).Model(&models.Role{}).Where("id = ?", role.ID).Updates(map[string]interface{}{
		"name":         role.Name,
		"display_name": role.DisplayName,
		"description":  role.Description,
		"updated_at":   time.Now(),
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// Delete removes the role and its permission grants
func (r *RoleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := GetDB(ctx, r.db)
	if err := db.Where("role_id = ?", id).Delete(&models.RolePermission{}).Error; err != nil {
		return err
	}
	result := db.Delete(&models.Role{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func (r *RoleRepository) CountUsers(ctx context.Context, roleID uuid.UUID) (int64, error) {
	var total int64
	err := GetDB(ctx, r.db).Model(&models.UserRole{}).
		Joins("JOIN users ON users.id = user_roles.user_id AND users.deleted_at IS NULL").
		Where("user_roles.role_id = ?", roleID).
		Count(&total).Error
	return total, err
}

// SyncPermissions replaces the role's grants with the named permissions.
// Unknown names are rejected.
func (r *RoleRepository) SyncPermissions(ctx context.Context, roleID uuid.UUID, permissionNames []string) error {
	db := GetDB(ctx, r.db)

	var perms []models.Permission
	if len(permissionNames) > 0 {
		if err := db.Where("name IN ?", permissionNames).Find(&perms).Error; err != nil {
			return err
		}
		if len(perms) != len(uniqueStrings(permissionNames)) {
			return domainerrors.NewError("unknown permission", domainerrors.ErrValidation)
		}
	}

	if err := db.Where("role_id = ?", roleID).Delete(&models.RolePermission{}).Error; err != nil {
		return err
	}
	if len(perms) == 0 {
		return nil
	}
	grants := make([]models.RolePermission, 0, len(perms))
	for _, p := range perms {
		grants = append(grants, models.RolePermission{RoleID: roleID, PermissionID: p.ID})
	}
	return db.Create(&grants).Error
}

func (r *RoleRepository) ListPermissions(ctx context.Context) ([]*entities.Permission, error) {
	var rows []models.Permission
	if err := GetDB(ctx, r.db).Order("group_name ASC, name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*entities.Permission, 0, len(rows))
	for i := range rows {
		p := permissionToEntity(&rows[i])
		out = append(out, &p)
	}
	return out, nil
}

// UpsertPermission inserts or refreshes a permission keyed by name
func (r *RoleRepository) UpsertPermission(ctx context.Context, p *entities.Permission) error {
	if p.ID == uuid.Nil {
		p.ID = utils.GenerateUUIDv7()
	}
	m := &models.Permission{
		ID:          p.ID,
		Name:        string(p.Name),
		DisplayName: p.DisplayName,
		Group:       p.Group,
		Description: p.Description,
	}
	return GetDB(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"display_name", "group_name", "description", "updated_at"}),
	}).Create(m).Error
}

// SyncUserRoles replaces the user's roles. assigned_at is kept for roles the
// user already held.
func (r *RoleRepository) SyncUserRoles(ctx context.Context, userID uuid.UUID, roleNames []string) error {
	db := GetDB(ctx, r.db)

	var roles []models.Role
	if len(roleNames) > 0 {
		if err := db.Where("name IN ?", roleNames).Find(&roles).Error; err != nil {
			return err
		}
		if len(roles) != len(uniqueStrings(roleNames)) {
			return domainerrors.NewError("unknown role", domainerrors.ErrValidation)
		}
	}

	var existing []models.UserRole
	if err := db.Where("user_id = ?", userID).Find(&existing).Error; err != nil {
		return err
	}
	assigned := make(map[uuid.UUID]time.Time, len(existing))
	for _, ur := range existing {
		assigned[ur.RoleID] = ur.AssignedAt
	}

	if err := db.Where("user_id = ?", userID).Delete(&models.UserRole{}).Error; err != nil {
		return err
	}
	if len(roles) == 0 {
		return nil
	}

	now := time.Now()
	rows := make([]models.UserRole, 0, len(roles))
	for _, role := range roles {
		at, ok := assigned[role.ID]
		if !ok {
			at = now
		}
		rows = append(rows, models.UserRole{UserID: userID, RoleID: role.ID, AssignedAt: at})
	}
	return db.Create(&rows).Error
}

// GetUserPermissions resolves the union of permissions across the user's roles
func (r *RoleRepository) GetUserPermissions(ctx context.Context, userID uuid.UUID) (entities.PermissionSet, error) {
	var names []string
	if err := GetDB(ctx, r.db).Table("permissions").
		Distinct("permissions.name").
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Joins("JOIN user_roles ON user_roles.role_id = role_permissions.role_id").
		Where("user_roles.user_id = ?", userID).
		Pluck("permissions.name", &names).Error; err != nil {
		return nil, err
	}
	set := entities.NewPermissionSet()
	for _, n := range names {
		set[entities.PermissionName(n)] = struct{}{}
	}
	return set, nil
}

func uniqueStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
