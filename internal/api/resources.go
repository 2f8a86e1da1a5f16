package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path"

	"github.com/bytedance/sonic"

	"github.com/cristalexdent/clinicadmin/internal/listing"
	"github.com/cristalexdent/clinicadmin/internal/record"
	"github.com/cristalexdent/clinicadmin/internal/resource"
	"github.com/cristalexdent/clinicadmin/internal/wizard"
)

// RecordID returns the identifier of an existing record in d, if any.
func RecordID(d record.Draft) string {
	if id := d.String("_id"); id != "" {
		return id
	}
	return d.String("id")
}

func itemPath(res resource.Resource, id string) string {
	return path.Join(res.Endpoint, url.PathEscape(id))
}

// Save creates d, or updates it when it carries an id.
func (c *Client) Save(ctx context.Context, res resource.Resource, d record.Draft) ([]byte, error) {
	payload := res.Prepare(d)
	id := RecordID(payload)
	delete(payload, "_id")
	delete(payload, "id")

	body, err := Encode(payload)
	if err != nil {
		return nil, err
	}
	if id != "" {
		return c.Put(ctx, itemPath(res, id), body)
	}
	return c.Post(ctx, res.Endpoint, body)
}

// Submit saves d and returns the id of the record: the one the backend
// reports, or the id d already carried when it was an update.
func (c *Client) Submit(ctx context.Context, res resource.Resource, d record.Draft) (string, error) {
	data, err := c.Save(ctx, res, d)
	if err != nil {
		return "", err
	}
	if id := SavedID(data); id != "" {
		return id, nil
	}
	return RecordID(d), nil
}

// Submitter adapts Submit to the wizard's submit collaborator. saved, when
// set, receives the id of every record that was stored.
func (c *Client) Submitter(res resource.Resource, saved ...func(id string)) wizard.SubmitFunc {
	return func(ctx context.Context, d record.Draft) error {
		id, err := c.Submit(ctx, res, d)
		if err != nil {
			return err
		}
		for _, fn := range saved {
			fn(id)
		}
		return nil
	}
}

// SavedID reads "_id" or "id" from a save response, also when the record
// is wrapped in a data object.
func SavedID(data []byte) string {
	var body map[string]any
	if err := sonic.Unmarshal(data, &body); err != nil {
		return ""
	}
	if inner, ok := body["data"].(map[string]any); ok {
		body = inner
	}
	return listing.Row(body).ID()
}

// bookkeeping keys are maintained by the backend and never sent back.
var bookkeeping = []string{"__v", "createdAt", "updatedAt"}

// Fetch loads one record of res as a draft. The draft keeps the record's
// id, so submitting it updates the record.
func (c *Client) Fetch(ctx context.Context, res resource.Resource, id string) (record.Draft, error) {
	if id == "" {
		return nil, fmt.Errorf("%s id required", res.Name)
	}
	var body map[string]any
	if err := c.Get(ctx, itemPath(res, id), &body); err != nil {
		return nil, err
	}
	if inner, ok := body["data"].(map[string]any); ok {
		body = inner
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("%s %s: empty response", res.Name, id)
	}
	for _, k := range bookkeeping {
		delete(body, k)
	}
	d := res.Decode(body)
	if RecordID(d) == "" {
		d["_id"] = id
	}
	return d, nil
}

// List fetches every record of res. Both a bare array and an object with a
// data array are accepted.
func (c *Client) List(ctx context.Context, res resource.Resource) ([]listing.Row, error) {
	data, err := c.do(ctx, http.MethodGet, res.ListPath(), Body{})
	if err != nil {
		return nil, err
	}
	var rows []listing.Row
	if err := sonic.Unmarshal(data, &rows); err == nil {
		return rows, nil
	}
	var wrapped struct {
		Data []listing.Row `json:"data"`
	}
	if err := sonic.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("failed to decode %s list: %w", res.Name, err)
	}
	return wrapped.Data, nil
}

// Remove deletes the record id of res.
func (c *Client) Remove(ctx context.Context, res resource.Resource, id string) error {
	if id == "" {
		return fmt.Errorf("%s id required", res.Name)
	}
	return c.Delete(ctx, itemPath(res, id))
}
