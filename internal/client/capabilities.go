package client

import (
	"context"
	"net/http"

	"github.com/fivetwenty-io/asyncstripe/pkg/stripe"
)

// resource carries what every capability needs to address one kind.
type resource[T stripe.Resource] struct {
	r     *requestor
	kind  string
	newFn func(id string) T
}

func newResource[T stripe.Resource](r *requestor, kind string, newFn func(id string) T) resource[T] {
	return resource[T]{r: r, kind: kind, newFn: newFn}
}

func (res resource[T]) classPath() string {
	return stripe.ClassPath(res.kind)
}

func (res resource[T]) upload() bool {
	return stripe.UsesUploadBase(res.kind)
}

func (res resource[T]) empty() T {
	return res.newFn("")
}

// create posts params to the class path and returns the new object.
func (res resource[T]) create(ctx context.Context, params stripe.Params, opts []stripe.RequestOption) *stripe.Future[T] {
	c := call{
		method:    http.MethodPost,
		path:      res.classPath(),
		params:    params,
		upload:    res.upload(),
		multipart: res.upload(),
		opts:      opts,
	}

	return request(ctx, res.r, c, func(raw interface{}, rc *requestContext) (T, error) {
		return stripe.MaterializeAs(raw, rc.apiKey, rc.account, res.empty)
	})
}

// list fetches one page from path, the class path unless overridden.
func (res resource[T]) list(ctx context.Context, path string, params stripe.Params, opts []stripe.RequestOption) *stripe.Future[*stripe.List] {
	if path == "" {
		path = res.classPath()
	}

	return fetchList(ctx, res.r, call{
		method: http.MethodGet,
		path:   path,
		params: params,
		upload: res.upload(),
		opts:   opts,
	})
}

func (res resource[T]) retrieve(ctx context.Context, id string, opts []stripe.RequestOption) *stripe.Future[T] {
	obj := res.newFn(id)

	path, err := obj.InstancePath()
	if err != nil {
		return stripe.Rejected[T](err)
	}

	c := call{method: http.MethodGet, path: path, upload: res.upload(), opts: opts}

	return request(ctx, res.r, c, func(raw interface{}, rc *requestContext) (T, error) {
		return mergeInto(obj, raw, rc, false)
	})
}

// save posts the changed fields of obj. An object without changes resolves
// to itself without a call.
func (res resource[T]) save(ctx context.Context, obj T, opts []stripe.RequestOption) *stripe.Future[T] {
	params := obj.Base().Serialize()
	if len(params) == 0 {
		res.r.debug("Trying to save already saved object", map[string]interface{}{"object": obj.Base().String()})

		return stripe.Resolved(obj)
	}

	return res.instanceCall(ctx, obj, http.MethodPost, "", params, opts, false)
}

// remove deletes obj and merges the deletion record into it.
func (res resource[T]) remove(ctx context.Context, obj T, params stripe.Params, opts []stripe.RequestOption) *stripe.Future[T] {
	return res.instanceCall(ctx, obj, http.MethodDelete, "", params, opts, false)
}

// instanceCall sends method to the instance path of obj plus an optional
// action segment and merges the response into obj.
func (res resource[T]) instanceCall(
	ctx context.Context,
	obj T,
	method, action string,
	params stripe.Params,
	opts []stripe.RequestOption,
	partial bool,
) *stripe.Future[T] {
	c, err := res.actionCall(obj, method, action, params, opts)
	if err != nil {
		return stripe.Rejected[T](err)
	}

	return request(ctx, res.r, c, func(raw interface{}, rc *requestContext) (T, error) {
		return mergeInto(obj, raw, rc, partial)
	})
}

func (res resource[T]) actionCall(obj T, method, action string, params stripe.Params, opts []stripe.RequestOption) (call, error) {
	path, err := obj.InstancePath()
	if err != nil {
		return call{}, err
	}

	if action != "" {
		path += "/" + action
	}

	return call{
		method: method,
		path:   path,
		params: params,
		upload: res.upload(),
		owner:  obj.Base(),
		opts:   opts,
	}, nil
}

func fetchList(ctx context.Context, r *requestor, c call) *stripe.Future[*stripe.List] {
	return request(ctx, r, c, func(raw interface{}, rc *requestContext) (*stripe.List, error) {
		return stripe.MaterializeAs(raw, rc.apiKey, rc.account, stripe.NewList)
	})
}

// withParam returns a copy of params with key set.
func withParam(params stripe.Params, key string, value interface{}) stripe.Params {
	out := make(stripe.Params, len(params)+1)
	for k, v := range params {
		out[k] = v
	}

	out[key] = value

	return out
}

type creatable[T stripe.Resource] struct{ res resource[T] }

// Create implements stripe.Creatable.
func (c creatable[T]) Create(ctx context.Context, params stripe.Params, opts ...stripe.RequestOption) *stripe.Future[T] {
	return c.res.create(ctx, params, opts)
}

type listable[T stripe.Resource] struct{ res resource[T] }

// List implements stripe.Listable.
func (l listable[T]) List(ctx context.Context, params stripe.Params, opts ...stripe.RequestOption) *stripe.Future[*stripe.List] {
	return l.res.list(ctx, "", params, opts)
}

type retrievable[T stripe.Resource] struct{ res resource[T] }

// Retrieve implements stripe.Retrievable.
func (r retrievable[T]) Retrieve(ctx context.Context, id string, opts ...stripe.RequestOption) *stripe.Future[T] {
	return r.res.retrieve(ctx, id, opts)
}

type updateable[T stripe.Resource] struct{ res resource[T] }

// Save implements stripe.Updateable.
func (u updateable[T]) Save(ctx context.Context, obj T, opts ...stripe.RequestOption) *stripe.Future[T] {
	return u.res.save(ctx, obj, opts)
}

type deletable[T stripe.Resource] struct{ res resource[T] }

// Delete implements stripe.Deletable.
func (d deletable[T]) Delete(ctx context.Context, obj T, params stripe.Params, opts ...stripe.RequestOption) *stripe.Future[T] {
	return d.res.remove(ctx, obj, params, opts)
}
