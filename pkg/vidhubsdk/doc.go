// Package vidhubsdk is a Go client for the vidhub HTTP API.
//
// Create a client, log in, and use the returned Session for authenticated
// calls:
//
//	client := vidhubsdk.NewSDKClient("http://localhost:8080")
//	session, err := client.Login(ctx, vidhubsdk.LoginRequest{
//		Username: "ana",
//		Password: "s3cret",
//	})
//	if err != nil {
//		return err
//	}
//	me, err := session.Me(ctx)
//
// A Session holds one access/refresh pair. Session.Refresh rotates both;
// the previous refresh token stops working as soon as the server accepts
// the new one, so a Session must not be shared between processes.
//
// Every failure the server reports comes back as *APIError, carrying the
// status code and the message from the failure envelope:
//
//	var apiErr *vidhubsdk.APIError
//	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
//		// log in again
//	}
package vidhubsdk
