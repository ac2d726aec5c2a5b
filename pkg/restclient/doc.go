// Package restclient issues JSON requests against controller/method style REST
// endpoints and maps non-success responses to typed errors.
//
//	c := restclient.New(httpclient.NewRestyClient(30*time.Second, nil), cfg)
//	ep := restclient.Endpoint{BaseURL: "http://users", Controller: "Users", Method: "ById"}
//	user, err := restclient.Get[User](ctx, c, ep, map[string]string{"id": "7"}, nil)
//	if restclient.IsBusiness(err) {
//	    fmt.Println(restclient.Messages(err))
//	}
package restclient
