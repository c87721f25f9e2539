// Package store implements the order lifecycle over GORM: order
// creation, status transitions, per-table billing aggregation and the
// notification side effects that follow committed transitions.
package store

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"comanda-backend/internal/auth"
	"comanda-backend/internal/errs"
	"comanda-backend/internal/events"
	"comanda-backend/internal/model"
)

// OrderLineInput is one requested line of a new order.
type OrderLineInput struct {
	MenuItemID int64  `json:"menuItemId"`
	Quantity   int    `json:"quantity"`
	Note       string `json:"note"`
}

// Pusher dispatches a web-push notification run for a table. The store
// treats it as fire-and-forget.
type Pusher interface {
	Dispatch(tableID int64)
}

// Store defines all database operations of the backend.
type Store interface {
	DB() *gorm.DB

	CreateOrder(ctx context.Context, tableID int64, lines []OrderLineInput) (*model.Order, error)
	ListActiveOrders(ctx context.Context, p auth.Principal) ([]model.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID int64, status model.OrderStatus) (*model.Order, error)
	UpdateOrderLineStatus(ctx context.Context, lineID int64, status model.OrderLineStatus) (*model.OrderLine, error)
	CalculateTableTotal(ctx context.Context, tableID int64) (decimal.Decimal, error)

	ListTables(ctx context.Context) ([]model.Table, error)
	CreateTable(ctx context.Context, number int) (*model.Table, error)

	ListCategories(ctx context.Context) ([]model.Category, error)
	ListMenuItems(ctx context.Context) ([]model.MenuItem, error)
	CreateMenuItem(ctx context.Context, item *model.MenuItem) error
	UpdateMenuItem(ctx context.Context, id int64, updates map[string]any) (*model.MenuItem, error)

	ListShifts(ctx context.Context) ([]model.Shift, error)
	OpenShift(ctx context.Context, openedByID int64) (*model.Shift, error)
	CloseShift(ctx context.Context, shiftID int64) (*model.Shift, error)
	HasOpenShift(ctx context.Context) (bool, error)

	FindUserByUsername(ctx context.Context, username string) (*model.User, error)
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db     *gorm.DB
	pub    events.Publisher
	pusher Pusher
}

// NewGormStore creates a new GORM-backed store. pub and pusher may be
// nil, in which case the corresponding side effects are skipped.
func NewGormStore(db *gorm.DB, pub events.Publisher, pusher Pusher) Store {
	return &gormStore{db: db, pub: pub, pusher: pusher}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

// notify publishes an event on the notification channel. Failures are
// logged and swallowed: the transaction that triggered the event has
// already committed.
func (s *gormStore) notify(channel, eventType string, data any) {
	if s.pub == nil {
		return
	}
	if err := s.pub.Publish(channel, eventType, data); err != nil {
		log.Printf("failed to publish %s on %s: %v", eventType, channel, err)
	}
}

// CreateOrder creates an order with its lines in a single transaction,
// snapshotting each line's unit price from the menu item's current
// price. A table that was available becomes occupied. Kitchen-station
// lines are announced on the kitchen channel after commit.
func (s *gormStore) CreateOrder(ctx context.Context, tableID int64, lines []OrderLineInput) (*model.Order, error) {
	if len(lines) == 0 {
		return nil, errs.NewValidationError("lines", "at least one line is required")
	}
	for _, in := range lines {
		if in.Quantity <= 0 {
			return nil, errs.NewValidationError("quantity", "must be positive")
		}
	}

	var table model.Table
	if err := s.db.WithContext(ctx).First(&table, tableID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewNotFoundError("table", tableID)
		}
		return nil, fmt.Errorf("failed to load table %d: %w", tableID, err)
	}

	var order model.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order = model.Order{TableID: table.ID, Status: model.OrderReceived}
		if err := tx.Create(&order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		for _, in := range lines {
			var item model.MenuItem
			if err := tx.Preload("Category").First(&item, in.MenuItemID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return errs.NewNotFoundError("menu item", in.MenuItemID)
				}
				return fmt.Errorf("failed to load menu item %d: %w", in.MenuItemID, err)
			}

			line := model.OrderLine{
				OrderID:    order.ID,
				MenuItemID: item.ID,
				Quantity:   in.Quantity,
				UnitPrice:  item.Price,
				Note:       in.Note,
				Status:     model.LineReceived,
			}
			if err := tx.Create(&line).Error; err != nil {
				return fmt.Errorf("failed to create order line: %w", err)
			}
			line.MenuItem = item
			order.Lines = append(order.Lines, line)
		}

		if table.Status == model.TableAvailable {
			if err := tx.Model(&table).Update("status", model.TableOccupied).Error; err != nil {
				return fmt.Errorf("failed to mark table %d occupied: %w", table.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, line := range order.Lines {
		if line.MenuItem.Category.Station != model.StationKitchen {
			continue
		}
		s.notify(events.KitchenChannel, "new_item", map[string]any{
			"lineId":      line.ID,
			"itemName":    line.MenuItem.Name,
			"quantity":    line.Quantity,
			"tableNumber": table.Number,
			"orderId":     order.ID,
			"status":      line.Status,
		})
	}

	return &order, nil
}

// ListActiveOrders returns all non-paid orders in creation order.
// Kitchen group members only see orders with at least one line routed
// to the kitchen station.
func (s *gormStore) ListActiveOrders(ctx context.Context, p auth.Principal) ([]model.Order, error) {
	q := s.db.WithContext(ctx).
		Preload("Table").
		Preload("Lines").
		Preload("Lines.MenuItem").
		Preload("Lines.MenuItem.Category").
		Where("orders.status <> ?", model.OrderPaid).
		Order("orders.created_at ASC")

	if p.InGroup(auth.GroupKitchen) && !p.Superuser {
		kitchenOrders := s.db.Model(&model.OrderLine{}).
			Select("order_lines.order_id").
			Joins("JOIN menu_items ON menu_items.id = order_lines.menu_item_id").
			Joins("JOIN categories ON categories.id = menu_items.category_id").
			Where("categories.station = ?", model.StationKitchen)
		q = q.Where("orders.id IN (?)", kitchenOrders)
	}

	var orders []model.Order
	if err := q.Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// UpdateOrderStatus persists a new order status. Marking an order paid
// requires every line across all unpaid orders of the same table to be
// delivered; the billing check aggregates over the table, not just the
// targeted order.
func (s *gormStore) UpdateOrderStatus(ctx context.Context, orderID int64, status model.OrderStatus) (*model.Order, error) {
	if !status.Valid() {
		return nil, errs.NewValidationError("status", fmt.Sprintf("%q is not a valid order status", status))
	}

	var order model.Order
	if err := s.db.WithContext(ctx).First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewNotFoundError("order", orderID)
		}
		return nil, fmt.Errorf("failed to load order %d: %w", orderID, err)
	}

	if status == model.OrderPaid {
		pending, err := s.countUndeliveredLines(ctx, order.TableID)
		if err != nil {
			return nil, err
		}
		if pending > 0 {
			return nil, errs.NewPreconditionFailedError("table still has items pending delivery")
		}
	}

	if err := s.db.WithContext(ctx).Model(&order).Update("status", status).Error; err != nil {
		return nil, fmt.Errorf("failed to update order %d: %w", orderID, err)
	}
	return &order, nil
}

// countUndeliveredLines counts lines of the table's unpaid orders that
// are not yet delivered.
func (s *gormStore) countUndeliveredLines(ctx context.Context, tableID int64) (int64, error) {
	var pending int64
	err := s.db.WithContext(ctx).Model(&model.OrderLine{}).
		Joins("JOIN orders ON orders.id = order_lines.order_id").
		Where("orders.table_id = ? AND orders.status <> ?", tableID, model.OrderPaid).
		Where("order_lines.status <> ?", model.LineDelivered).
		Count(&pending).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count undelivered lines for table %d: %w", tableID, err)
	}
	return pending, nil
}

// CalculateTableTotal sums unit price times quantity over all lines of
// the table's unpaid orders, using exact decimal arithmetic. It fails
// with a precondition error while any of those lines is undelivered.
func (s *gormStore) CalculateTableTotal(ctx context.Context, tableID int64) (decimal.Decimal, error) {
	var table model.Table
	if err := s.db.WithContext(ctx).First(&table, tableID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, errs.NewNotFoundError("table", tableID)
		}
		return decimal.Zero, fmt.Errorf("failed to load table %d: %w", tableID, err)
	}

	pending, err := s.countUndeliveredLines(ctx, tableID)
	if err != nil {
		return decimal.Zero, err
	}
	if pending > 0 {
		return decimal.Zero, errs.NewPreconditionFailedError("cannot bill, items are still pending delivery")
	}

	var lines []model.OrderLine
	err = s.db.WithContext(ctx).
		Select("order_lines.*").
		Joins("JOIN orders ON orders.id = order_lines.order_id").
		Where("orders.table_id = ? AND orders.status <> ?", tableID, model.OrderPaid).
		Find(&lines).Error
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to load billable lines for table %d: %w", tableID, err)
	}

	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return total, nil
}

// UpdateOrderLineStatus persists a new line status. Any value in the
// vocabulary is accepted; no transition ordering is enforced. Ready
// lines are announced on the table's channel and pushed to subscribed
// waitstaff devices; delivered lines are announced on the kitchen
// channel so it can clear its view.
func (s *gormStore) UpdateOrderLineStatus(ctx context.Context, lineID int64, status model.OrderLineStatus) (*model.OrderLine, error) {
	if !status.Valid() {
		return nil, errs.NewValidationError("status", fmt.Sprintf("%q is not a valid line status", status))
	}

	var line model.OrderLine
	err := s.db.WithContext(ctx).
		Preload("Order").
		Preload("Order.Table").
		Preload("MenuItem").
		First(&line, lineID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewNotFoundError("order line", lineID)
		}
		return nil, fmt.Errorf("failed to load order line %d: %w", lineID, err)
	}

	if err := s.db.WithContext(ctx).Model(&line).Update("status", status).Error; err != nil {
		return nil, fmt.Errorf("failed to update order line %d: %w", lineID, err)
	}
	line.Status = status

	switch status {
	case model.LineReady:
		s.notify(events.TableChannel(line.Order.TableID), "item_ready", map[string]any{
			"lineId":      line.ID,
			"itemName":    line.MenuItem.Name,
			"tableNumber": line.Order.Table.Number,
			"status":      status,
		})
		if s.pusher != nil {
			s.pusher.Dispatch(line.Order.TableID)
		}
	case model.LineDelivered:
		s.notify(events.KitchenChannel, "item_delivered", map[string]any{
			"lineId": line.ID,
		})
	}

	return &line, nil
}

func (s *gormStore) ListTables(ctx context.Context) ([]model.Table, error) {
	var tables []model.Table
	err := s.db.WithContext(ctx).
		Preload("Orders", "status <> ?", model.OrderPaid).
		Preload("Orders.Lines").
		Preload("Orders.Lines.MenuItem").
		Order("number ASC").
		Find(&tables).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	return tables, nil
}

func (s *gormStore) CreateTable(ctx context.Context, number int) (*model.Table, error) {
	if number <= 0 {
		return nil, errs.NewValidationError("number", "must be positive")
	}
	table := model.Table{Number: number, Status: model.TableAvailable}
	if err := s.db.WithContext(ctx).Create(&table).Error; err != nil {
		return nil, fmt.Errorf("failed to create table %d: %w", number, err)
	}
	return &table, nil
}

func (s *gormStore) ListCategories(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	if err := s.db.WithContext(ctx).Preload("Items").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

func (s *gormStore) ListMenuItems(ctx context.Context) ([]model.MenuItem, error) {
	var items []model.MenuItem
	if err := s.db.WithContext(ctx).Preload("Category").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list menu items: %w", err)
	}
	return items, nil
}

func (s *gormStore) CreateMenuItem(ctx context.Context, item *model.MenuItem) error {
	if item.Name == "" {
		return errs.NewValidationError("name", "is required")
	}
	if item.Price.IsNegative() {
		return errs.NewValidationError("price", "must not be negative")
	}
	var category model.Category
	if err := s.db.WithContext(ctx).First(&category, item.CategoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.NewNotFoundError("category", item.CategoryID)
		}
		return fmt.Errorf("failed to load category %d: %w", item.CategoryID, err)
	}
	if err := s.db.WithContext(ctx).Create(item).Error; err != nil {
		return fmt.Errorf("failed to create menu item: %w", err)
	}
	item.Category = category
	return nil
}

func (s *gormStore) UpdateMenuItem(ctx context.Context, id int64, updates map[string]any) (*model.MenuItem, error) {
	var item model.MenuItem
	if err := s.db.WithContext(ctx).First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewNotFoundError("menu item", id)
		}
		return nil, fmt.Errorf("failed to load menu item %d: %w", id, err)
	}
	if err := s.db.WithContext(ctx).Model(&item).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update menu item %d: %w", id, err)
	}
	return &item, nil
}

func (s *gormStore) ListShifts(ctx context.Context) ([]model.Shift, error) {
	var shifts []model.Shift
	if err := s.db.WithContext(ctx).Order("started_at DESC").Find(&shifts).Error; err != nil {
		return nil, fmt.Errorf("failed to list shifts: %w", err)
	}
	return shifts, nil
}

// OpenShift opens a new shift for the given manager. Uniqueness of the
// open shift is not enforced; the gate only asks whether any shift is
// open.
func (s *gormStore) OpenShift(ctx context.Context, openedByID int64) (*model.Shift, error) {
	shift := model.Shift{
		StartedAt:  s.db.NowFunc(),
		OpenedByID: openedByID,
		Status:     model.ShiftOpen,
	}
	if err := s.db.WithContext(ctx).Create(&shift).Error; err != nil {
		return nil, fmt.Errorf("failed to open shift: %w", err)
	}
	return &shift, nil
}

func (s *gormStore) CloseShift(ctx context.Context, shiftID int64) (*model.Shift, error) {
	var shift model.Shift
	if err := s.db.WithContext(ctx).First(&shift, shiftID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewNotFoundError("shift", shiftID)
		}
		return nil, fmt.Errorf("failed to load shift %d: %w", shiftID, err)
	}
	if shift.Status == model.ShiftClosed {
		return nil, errs.NewPreconditionFailedError("shift is already closed")
	}

	now := s.db.NowFunc()
	updates := map[string]any{"status": model.ShiftClosed, "ended_at": now}
	if err := s.db.WithContext(ctx).Model(&shift).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to close shift %d: %w", shiftID, err)
	}
	shift.EndedAt = &now
	return &shift, nil
}

func (s *gormStore) HasOpenShift(ctx context.Context) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Shift{}).
		Where("status = ?", model.ShiftOpen).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to count open shifts: %w", err)
	}
	return count > 0, nil
}

func (s *gormStore) FindUserByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).
		Preload("Groups").
		First(&user, "username = ?", username).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewNotFoundError("user", username)
		}
		return nil, fmt.Errorf("failed to load user %q: %w", username, err)
	}
	return &user, nil
}
