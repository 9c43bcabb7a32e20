package client

import "github.com/fivetwenty-io/asyncstripe/pkg/stripe"

// PlansClient implements stripe.PlansClient.
type PlansClient struct {
	creatable[*stripe.Plan]
	listable[*stripe.Plan]
	retrievable[*stripe.Plan]
	updateable[*stripe.Plan]
	deletable[*stripe.Plan]
}

// NewPlansClient creates a new plans client.
func NewPlansClient(r *requestor) *PlansClient {
	res := newResource(r, stripe.KindPlan, stripe.NewPlan)

	return &PlansClient{
		creatable:   creatable[*stripe.Plan]{res},
		listable:    listable[*stripe.Plan]{res},
		retrievable: retrievable[*stripe.Plan]{res},
		updateable:  updateable[*stripe.Plan]{res},
		deletable:   deletable[*stripe.Plan]{res},
	}
}

// CouponsClient implements stripe.CouponsClient.
type CouponsClient struct {
	creatable[*stripe.Coupon]
	listable[*stripe.Coupon]
	retrievable[*stripe.Coupon]
	updateable[*stripe.Coupon]
	deletable[*stripe.Coupon]
}

// NewCouponsClient creates a new coupons client.
func NewCouponsClient(r *requestor) *CouponsClient {
	res := newResource(r, stripe.KindCoupon, stripe.NewCoupon)

	return &CouponsClient{
		creatable:   creatable[*stripe.Coupon]{res},
		listable:    listable[*stripe.Coupon]{res},
		retrievable: retrievable[*stripe.Coupon]{res},
		updateable:  updateable[*stripe.Coupon]{res},
		deletable:   deletable[*stripe.Coupon]{res},
	}
}
