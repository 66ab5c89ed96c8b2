/*
Package gatesdk is a Go client for the Growers-Gate authentication service.

An SDKClient covers the public routes and hands out Sessions:

	client := gatesdk.NewSDKClient("http://localhost:3001")

	session, _, err := client.Login(ctx, email, password, "")
	var challenge *gatesdk.ChallengeRequiredError
	if errors.As(err, &challenge) {
		session, _, err = client.CompleteTwoFactor(ctx, challenge, code)
	}

A Session carries the session token, refreshes it through /refresh-token
when it gets close to expiry and is safe for concurrent use:

	dash, err := session.Dashboard(ctx)
	codes, err := session.EnableTwoFactor(ctx, code)
	err = session.Logout(ctx)

Failed calls return an *APIError carrying the HTTP status, the server message
and, for validation failures, the offending fields.
*/
package gatesdk
