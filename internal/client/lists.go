package client

import (
	"context"
	"net/http"

	"github.com/fivetwenty-io/asyncstripe/pkg/stripe"
)

// ListsClient implements stripe.ListsClient.
type ListsClient struct {
	r *requestor
}

// NewListsClient creates a new lists client.
func NewListsClient(r *requestor) *ListsClient {
	return &ListsClient{r: r}
}

func (c *ListsClient) listCall(list *stripe.List, method, suffix string, params stripe.Params, opts []stripe.RequestOption) (call, error) {
	path, err := list.InstancePath()
	if err != nil {
		return call{}, err
	}

	return call{
		method: method,
		path:   path + suffix,
		params: params,
		owner:  list.Base(),
		opts:   opts,
	}, nil
}

// All implements stripe.ListsClient.All.
func (c *ListsClient) All(ctx context.Context, list *stripe.List, params stripe.Params, opts ...stripe.RequestOption) *stripe.Future[*stripe.List] {
	req, err := c.listCall(list, http.MethodGet, "", params, opts)
	if err != nil {
		return stripe.Rejected[*stripe.List](err)
	}

	return fetchList(ctx, c.r, req)
}

// Create implements stripe.ListsClient.Create.
func (c *ListsClient) Create(ctx context.Context, list *stripe.List, params stripe.Params, opts ...stripe.RequestOption) *stripe.Future[stripe.Resource] {
	req, err := c.listCall(list, http.MethodPost, "", params, opts)
	if err != nil {
		return stripe.Rejected[stripe.Resource](err)
	}

	return c.fetchItem(ctx, req)
}

// Retrieve implements stripe.ListsClient.Retrieve.
func (c *ListsClient) Retrieve(ctx context.Context, list *stripe.List, id string, opts ...stripe.RequestOption) *stripe.Future[stripe.Resource] {
	req, err := c.listCall(list, http.MethodGet, "", nil, opts)
	if err != nil {
		return stripe.Rejected[stripe.Resource](err)
	}

	if req.path, err = stripe.InstancePathFor(req.path, id); err != nil {
		return stripe.Rejected[stripe.Resource](err)
	}

	return c.fetchItem(ctx, req)
}

// NextPage implements stripe.ListsClient.NextPage.
func (c *ListsClient) NextPage(ctx context.Context, list *stripe.List, params stripe.Params, opts ...stripe.RequestOption) *stripe.Future[*stripe.List] {
	if !list.HasMore() || list.LastID() == "" {
		return stripe.Rejected[*stripe.List](stripe.ErrNoMoreItems)
	}

	return c.All(ctx, list, withParam(params, "starting_after", list.LastID()), opts...)
}

func (c *ListsClient) fetchItem(ctx context.Context, req call) *stripe.Future[stripe.Resource] {
	return request(ctx, c.r, req, func(raw interface{}, rc *requestContext) (stripe.Resource, error) {
		if res, ok := stripe.Materialize(raw, rc.apiKey, rc.account).(stripe.Resource); ok {
			return res, nil
		}

		return nil, invalidPayload(raw)
	})
}
