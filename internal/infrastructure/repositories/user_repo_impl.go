package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"avilegal.backend/internal/domain/entities"
	domainerrors "avilegal.backend/internal/domain/errors"
	"avilegal.backend/internal/infrastructure/models"
	"avilegal.backend/pkg/utils"
)

// UserRepository implements user data operations
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *entities.User) error {
	if user.ID == uuid.Nil {
		user.ID = utils.GenerateUUIDv7()
	}
	if user.Status == "" {
		user.Status = entities.UserStatusActive
	}
	m := userToModel(user)
	if err := GetDB(ctx, r.db).Create(m).Error; err != nil {
		return err
	}
	user.CreatedAt = m.CreatedAt
	user.UpdatedAt = m.UpdatedAt
	return nil
}

// GetByID gets a user by ID with roles loaded
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	return r.getOne(ctx, "id = ?", id)
}

// GetByEmail gets a user by email with roles loaded
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	return r.getOne(ctx, "email = ?", strings.ToLower(strings.TrimSpace(email)))
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg interface{}) (*entities.User, error) {
	var m models.User
	if err := GetDB(ctx, r.db).Where(query, arg).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}

	user := userToEntity(&m)
	roles, err := loadUserRoles(ctx, GetDB(ctx, r.db), []uuid.UUID{m.ID})
	if err != nil {
		return nil, err
	}
	user.Roles = roles[m.ID]
	return user, nil
}

// Update updates profile fields
func (r *UserRepository) Update(ctx context.Context, user *entities.User) error {
	return r.updateColumns(ctx, user.ID, map[string]interface{}{
		"name":       user.Name,
		"phone":      user.Phone,
		"updated_at": time.Now(),
	})
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return r.updateColumns(ctx, id, map[string]interface{}{
		"password_hash": passwordHash,
		"updated_at":    time.Now(),
	})
}

func (r *UserRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entities.UserStatus) error {
	return r.updateColumns(ctx, id, map[string]interface{}{
		"status":     string(status),
		"updated_at": time.Now(),
	})
}

func (r *UserRepository) updateColumns(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	result := GetDB(ctx, r.db).Model(&models.User{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// List lists users newest first with roles and application counts
func (r *UserRepository) List(ctx context.Context, filter entities.UserFilter, page utils.PaginationParams) ([]*entities.User, int64, error) {
	db := GetDB(ctx, r.db)
	query := db.Model(&models.User{})

	if filter.Search != "" {
		term := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", term, term)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}
	roleNames := filter.Roles
	if filter.Role != "" {
		roleNames = append([]string{filter.Role}, roleNames...)
	}
	if len(roleNames) > 0 {
		query = query.Where("id IN (?)", db.Table("user_roles").
			Select("user_roles.user_id").
			Joins("JOIN roles ON roles.id = user_roles.role_id").
			Where("roles.name IN ?", roleNames))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.User
	if err := query.Order("created_at DESC").Scopes(paginate(page)).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	if len(rows) == 0 {
		return []*entities.User{}, total, nil
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, m := range rows {
		ids = append(ids, m.ID)
	}
	roles, err := loadUserRoles(ctx, db, ids)
	if err != nil {
		return nil, 0, err
	}
	counts, err := r.applicationCounts(db, ids)
	if err != nil {
		return nil, 0, err
	}

	users := make([]*entities.User, 0, len(rows))
	for i := range rows {
		u := userToEntity(&rows[i])
		u.Roles = roles[u.ID]
		u.ApplicationsCount = counts[u.ID]
		users = append(users, u)
	}
	return users, total, nil
}

func (r *UserRepository) applicationCounts(db *gorm.DB, ids []uuid.UUID) (map[uuid.UUID]int64, error) {
	var rows []struct {
		UserID uuid.UUID
		Total  int64
	}
	if err := db.Model(&models.Application{}).
		Select("user_id, COUNT(*) AS total").
		Where("user_id IN ?", ids).
		Group("user_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]int64, len(rows))
	for _, row := range rows {
		out[row.UserID] = row.Total
	}
	return out, nil
}

// CountByRole counts accounts holding role
func (r *UserRepository) CountByRole(ctx context.Context, role string) (int64, error) {
	var total int64
	err := GetDB(ctx, r.db).Model(&models.User{}).
		Joins("JOIN user_roles ON user_roles.user_id = users.id").
		Joins("JOIN roles ON roles.id = user_roles.role_id").
		Where("roles.name = ?", role).
		Count(&total).Error
	return total, err
}

func loadUserRoles(ctx context.Context, db *gorm.DB, userIDs []uuid.UUID) (map[uuid.UUID][]entities.Role, error) {
	var rows []struct {
		models.Role
		UserID uuid.UUID
	}
	if err := db.WithContext(ctx).Table("roles").
		Select("roles.*, user_roles.user_id").
		Joins("JOIN user_roles ON user_roles.role_id = roles.id").
		Where("user_roles.user_id IN ?", userIDs).
		Order("roles.name").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID][]entities.Role, len(userIDs))
	for i := range rows {
		out[rows[i].UserID] = append(out[rows[i].UserID], *roleToEntity(&rows[i].Role))
	}
	return out, nil
}
