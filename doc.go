// Package vantage provides a Go client for the Vantage Server REST API.
//
// The client covers session management and the datasources endpoint:
// listing, fetching, updating, deleting, downloading, and publishing
// datasources, including chunked upload sessions for large files.
//
// # Getting started
//
//	client, err := vantage.New("https://vantage.example.com")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := client.SignIn(ctx, "admin", "password", ""); err != nil {
//	    log.Fatal(err)
//	}
//	defer client.SignOut(ctx)
//
//	items, pagination, err := client.Datasources().List(ctx)
//
// # Publishing
//
// Publish sends files below 64MB in a single request and switches to a
// chunked upload session at or above that size. Both paths go through the
// same call:
//
//	ds := vantagetypes.Datasource{Name: "Sales", ProjectID: projectID}
//	published, err := client.Datasources().PublishFile(ctx, ds, "sales.vdsx",
//	    vantagetypes.PublishModeOverwrite)
//
// # Errors
//
// Failed operations return an *errors.Error wrapping a sentinel that can be
// inspected with errors.Is, or checked with helpers such as
// errors.IsNotFound and errors.IsUnauthorized.
package vantage
