package repository

import (
	"context"
	"errors"

	"storefront/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) *CartRepository {
	return &CartRepository{db: db}
}

// GetOrCreate loads the user's cart with its products, creating an empty
// cart on first use.
func (r *CartRepository) GetOrCreate(ctx context.Context, userID int64) (*domain.Cart, error) {
	db := r.db.WithContext(ctx)

	var cart domain.Cart
	err := db.Preload("Items", func(q *gorm.DB) *gorm.DB { return q.Order("id") }).
		Preload("Items.Product").
		Where("user_id = ?", userID).
		First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		cart = domain.Cart{UserID: userID}
		if err := db.Create(&cart).Error; err != nil {
			return nil, err
		}
		return &cart, nil
	}
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// AddItem inserts the product or bumps its quantity, never past max.
func (r *CartRepository) AddItem(ctx context.Context, cartID int64, productID string, qty, max int) error {
	least := "MIN"
	if r.db.Dialector.Name() == "postgres" {
		least = "LEAST"
	}

	item := domain.CartItem{CartID: cartID, ProductID: productID, Quantity: qty}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "cart_id"}, {Name: "product_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"quantity": gorm.Expr(least+"(cart_items.quantity + ?, ?)", qty, max),
		}),
	}).Create(&item).Error
}

// SetQuantity returns gorm.ErrRecordNotFound when the product is not in the
// cart.
func (r *CartRepository) SetQuantity(ctx context.Context, cartID int64, productID string, qty int) error {
	res := r.db.WithContext(ctx).Model(&domain.CartItem{}).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		Update("quantity", qty)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *CartRepository) RemoveItem(ctx context.Context, cartID int64, productID string) error {
	res := r.db.WithContext(ctx).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		Delete(&domain.CartItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Clear empties the cart and drops any applied code.
func (r *CartRepository) Clear(ctx context.Context, cartID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("cart_id = ?", cartID).Delete(&domain.CartItem{}).Error; err != nil {
			return err
		}
		return tx.Model(&domain.Cart{}).Where("id = ?", cartID).Updates(map[string]any{
			"coupon_code":     "",
			"coupon_amount":   0,
			"referral_code":   "",
			"referral_amount": 0,
		}).Error
	})
}

// SaveDiscounts persists the cart's coupon and referral columns.
func (r *CartRepository) SaveDiscounts(ctx context.Context, cart *domain.Cart) error {
	return r.db.WithContext(ctx).Model(&domain.Cart{}).Where("id = ?", cart.ID).Updates(map[string]any{
		"coupon_code":     cart.CouponCode,
		"coupon_amount":   cart.CouponAmount,
		"referral_code":   cart.ReferralCode,
		"referral_amount": cart.ReferralAmount,
	}).Error
}
