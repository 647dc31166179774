package main

import (
	"context"
	"fmt"

	oDomain "github.com/ridloal/fashion-dropship-store/internal/order/domain"
	orderService "github.com/ridloal/fashion-dropship-store/internal/order/service"
	"github.com/ridloal/fashion-dropship-store/internal/platform/logger"
	pDomain "github.com/ridloal/fashion-dropship-store/internal/product/domain"
	productService "github.com/ridloal/fashion-dropship-store/internal/product/service"
	sDomain "github.com/ridloal/fashion-dropship-store/internal/supplier/domain"
	supplierService "github.com/ridloal/fashion-dropship-store/internal/supplier/service"
)

// supplierFulfillment forwards paid storefront orders to the supplier.
type supplierFulfillment struct {
	supplier supplierService.SupplierService
}

func (f supplierFulfillment) PlaceSupplierOrder(ctx context.Context, order *oDomain.Order) (string, error) {
	req := sDomain.CreateOrderRequest{
		OrderID:      order.ID,
		ShippingCost: order.Shipping,
	}
	for _, it := range order.Items {
		if it.SupplierProductID == "" {
			logger.Warn("Order %s: item %s has no supplier product, skipping", order.ID, it.ProductID)
			continue
		}
		req.Items = append(req.Items, sDomain.CreateOrderItem{
			ProductID:   it.SupplierProductID,
			SKU:         it.SupplierSKU,
			Quantity:    it.Quantity,
			RetailPrice: it.Price,
		})
	}
	if len(req.Items) == 0 {
		return "", fmt.Errorf("order %s has no supplier items", order.ID)
	}

	so, err := f.supplier.CreateOrder(ctx, req)
	if err != nil {
		return "", err
	}
	return so.ID, nil
}

// relayStatus pushes supplier order transitions onto the storefront order.
func relayStatus(orders orderService.OrderService) supplierService.StatusListener {
	return func(ctx context.Context, change sDomain.StatusChange) {
		_, err := orders.ApplySupplierUpdate(ctx, oDomain.SupplierUpdate{
			SupplierOrderID: change.SupplierOrderID,
			OrderID:         change.OrderID,
			Status:          string(change.To),
			TrackingNumber:  change.TrackingNumber,
		})
		if err != nil {
			logger.Error("Relay supplier status failed for "+change.SupplierOrderID, err)
		}
	}
}

// relayInventory copies supplier stock levels onto the storefront catalog.
func relayInventory(products productService.ProductService) supplierService.InventoryListener {
	return func(ctx context.Context, levels []sDomain.StockLevel) {
		converted := make([]pDomain.StockLevel, 0, len(levels))
		for _, l := range levels {
			converted = append(converted, pDomain.StockLevel{SupplierProductID: l.ProductID, Stock: l.Stock})
		}
		n := products.ApplySupplierStock(ctx, converted)
		logger.Debug("Supplier inventory refreshed %d storefront products", n)
	}
}
