package client

import "github.com/fivetwenty-io/asyncstripe/pkg/stripe"

// EventsClient implements stripe.EventsClient.
type EventsClient struct {
	listable[*stripe.Event]
	retrievable[*stripe.Event]
}

// NewEventsClient creates a new events client.
func NewEventsClient(r *requestor) *EventsClient {
	res := newResource(r, stripe.KindEvent, stripe.NewEvent)

	return &EventsClient{
		listable:    listable[*stripe.Event]{res},
		retrievable: retrievable[*stripe.Event]{res},
	}
}

// FileUploadsClient implements stripe.FileUploadsClient. Every call goes to
// the upload host; Create sends a multipart body.
type FileUploadsClient struct {
	creatable[*stripe.FileUpload]
	listable[*stripe.FileUpload]
	retrievable[*stripe.FileUpload]
}

// NewFileUploadsClient creates a new file uploads client.
func NewFileUploadsClient(r *requestor) *FileUploadsClient {
	res := newResource(r, stripe.KindFileUpload, stripe.NewFileUpload)

	return &FileUploadsClient{
		creatable:   creatable[*stripe.FileUpload]{res},
		listable:    listable[*stripe.FileUpload]{res},
		retrievable: retrievable[*stripe.FileUpload]{res},
	}
}
