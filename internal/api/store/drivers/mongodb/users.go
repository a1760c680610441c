package mongodb

import (
	"context"
	"time"

	"github.com/aussiebroadwan/vidhub/internal/api/domain"
	"github.com/aussiebroadwan/vidhub/internal/api/store"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

type userDoc struct {
	ID                    string     `bson:"_id"`
	Username              string     `bson:"username"`
	Email                 string     `bson:"email"`
	Fullname              string     `bson:"fullname"`
	Avatar                string     `bson:"avatar"`
	CoverImage            string     `bson:"coverImage,omitempty"`
	PasswordHash          string     `bson:"passwordHash"`
	RefreshToken          string     `bson:"refreshToken,omitempty"`
	RefreshTokenExpiresAt *time.Time `bson:"refreshTokenExpiresAt,omitempty"`
	CreatedAt             time.Time  `bson:"createdAt"`
	UpdatedAt             time.Time  `bson:"updatedAt"`
}

func toUserDoc(u domain.User) userDoc {
	return userDoc{
		ID:                    u.ID,
		Username:              u.Username,
		Email:                 u.Email,
		Fullname:              u.Fullname,
		Avatar:                u.Avatar,
		CoverImage:            u.CoverImage,
		PasswordHash:          u.PasswordHash,
		RefreshToken:          u.RefreshToken,
		RefreshTokenExpiresAt: u.RefreshTokenExpiresAt,
		CreatedAt:             u.CreatedAt,
		UpdatedAt:             u.UpdatedAt,
	}
}

func (d userDoc) domain() domain.User {
	var exp *time.Time
	if d.RefreshTokenExpiresAt != nil {
		t := d.RefreshTokenExpiresAt.UTC()
		exp = &t
	}
	return domain.User{
		ID:                    d.ID,
		Username:              d.Username,
		Email:                 d.Email,
		Fullname:              d.Fullname,
		Avatar:                d.Avatar,
		CoverImage:            d.CoverImage,
		PasswordHash:          d.PasswordHash,
		RefreshToken:          d.RefreshToken,
		RefreshTokenExpiresAt: exp,
		CreatedAt:             d.CreatedAt.UTC(),
		UpdatedAt:             d.UpdatedAt.UTC(),
	}
}

type usersRepo struct {
	coll *mongo.Collection
}

func (r *usersRepo) findOne(ctx context.Context, filter any) (domain.User, error) {
	var d userDoc
	if err := r.coll.FindOne(ctx, filter).Decode(&d); err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return d.domain(), nil
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	return r.findOne(ctx, bson.D{{Key: "_id", Value: id}})
}

func (r *usersRepo) FindUserByUsernameOrEmail(ctx context.Context, username, email string) (domain.User, error) {
	var or bson.A
	if username != "" {
		or = append(or, bson.D{{Key: "username", Value: username}})
	}
	if email != "" {
		or = append(or, bson.D{{Key: "email", Value: email}})
	}
	if len(or) == 0 {
		return domain.User{}, store.ErrNotFound
	}
	return r.findOne(ctx, bson.D{{Key: "$or", Value: or}})
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.coll.InsertOne(ctx, toUserDoc(u))
	return mapDuplicate(err)
}

func (r *usersRepo) SetRefreshToken(ctx context.Context, userID, token string, expiresAt time.Time) error {
	set := bson.D{{Key: "updatedAt", Value: time.Now().UTC()}}

	var update bson.D
	if token == "" {
		update = bson.D{
			{Key: "$set", Value: set},
			{Key: "$unset", Value: bson.D{
				{Key: "refreshToken", Value: ""},
				{Key: "refreshTokenExpiresAt", Value: ""},
			}},
		}
	} else {
		set = append(set,
			bson.E{Key: "refreshToken", Value: token},
			bson.E{Key: "refreshTokenExpiresAt", Value: expiresAt.UTC()},
		)
		update = bson.D{{Key: "$set", Value: set}}
	}

	res, err := r.coll.UpdateOne(ctx, bson.D{{Key: "_id", Value: userID}}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *usersRepo) SwapRefreshToken(ctx context.Context, userID, current, next string, expiresAt time.Time) error {
	if current == "" {
		return store.ErrTokenMismatch
	}

	res, err := r.coll.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: userID}, {Key: "refreshToken", Value: current}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "refreshToken", Value: next},
			{Key: "refreshTokenExpiresAt", Value: expiresAt.UTC()},
			{Key: "updatedAt", Value: time.Now().UTC()},
		}}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrTokenMismatch
	}
	return nil
}

func (r *usersRepo) ClearExpiredRefreshTokens(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.coll.UpdateMany(ctx,
		bson.D{{Key: "refreshTokenExpiresAt", Value: bson.D{{Key: "$lt", Value: now.UTC()}}}},
		bson.D{{Key: "$unset", Value: bson.D{
			{Key: "refreshToken", Value: ""},
			{Key: "refreshTokenExpiresAt", Value: ""},
		}}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}
