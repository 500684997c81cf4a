package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/himanshu0633/mytestbuddiesbackend/internal/quiz/domain"
)

type userDoc struct {
	ID            string     `bson:"_id"`
	Name          string     `bson:"name"`
	Email         string     `bson:"email,omitempty"`
	Mobile        string     `bson:"mobile,omitempty"`
	PasswordHash  string     `bson:"passwordHash"`
	UserType      string     `bson:"userType"`
	Role          string     `bson:"role"`
	EmailVerified bool       `bson:"emailVerified"`
	Disabled      bool       `bson:"disabled"`
	LastLoginAt   *time.Time `bson:"lastLoginAt,omitempty"`
	CreatedAt     time.Time  `bson:"createdAt"`
	UpdatedAt     time.Time  `bson:"updatedAt"`
}

func (d userDoc) domain() domain.User {
	return domain.User{
		ID:            d.ID,
		Name:          d.Name,
		Email:         d.Email,
		Mobile:        d.Mobile,
		PasswordHash:  d.PasswordHash,
		UserType:      domain.UserType(d.UserType),
		Role:          domain.Role(d.Role),
		EmailVerified: d.EmailVerified,
		Disabled:      d.Disabled,
		LastLoginAt:   utcPtr(d.LastLoginAt),
		CreatedAt:     utc(d.CreatedAt),
		UpdatedAt:     utc(d.UpdatedAt),
	}
}

type usersRepo struct{ base }

func (r *usersRepo) Create(ctx context.Context, u domain.User) error {
	_, err := r.col(colUsers).InsertOne(r.bind(ctx), userDoc{
		ID:            u.ID,
		Name:          u.Name,
		Email:         u.Email,
		Mobile:        u.Mobile,
		PasswordHash:  u.PasswordHash,
		UserType:      string(u.UserType),
		Role:          string(u.Role),
		EmailVerified: u.EmailVerified,
		Disabled:      u.Disabled,
		LastLoginAt:   u.LastLoginAt,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	})
	return mapDuplicate(err)
}

func (r *usersRepo) findOne(ctx context.Context, filter bson.M) (domain.User, error) {
	var d userDoc
	if err := r.col(colUsers).FindOne(r.bind(ctx), filter).Decode(&d); err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return d.domain(), nil
}

func (r *usersRepo) GetByID(ctx context.Context, id string) (domain.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *usersRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *usersRepo) GetByMobile(ctx context.Context, mobile string) (domain.User, error) {
	return r.findOne(ctx, bson.M{"mobile": mobile})
}

func (r *usersRepo) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	return matchedOne(r.col(colUsers).UpdateByID(r.bind(ctx), id,
		bson.M{"$set": bson.M{"lastLoginAt": at, "updatedAt": at}}))
}

func (r *usersRepo) SetDisabled(ctx context.Context, id string, disabled bool, at time.Time) error {
	return matchedOne(r.col(colUsers).UpdateByID(r.bind(ctx), id,
		bson.M{"$set": bson.M{"disabled": disabled, "updatedAt": at}}))
}
