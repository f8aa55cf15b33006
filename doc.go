// Copyright 2026 The fetchq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package fetchq provides a concurrent HTTP request dispatch engine: a
fixed pool of workers drains a shared queue of typed requests, executes
them against a pluggable transport, revalidates a local response cache
with conditional requests, retries transient failures under a
per-request retry policy, and delivers exactly one terminal outcome
(success, error, or cancel) per request.

Create an Engine to begin dispatching requests.

	engine := &fetchq.Engine{Workers: 4}
	engine.Start()
	defer engine.Stop()

	r := request.New("GET", "https://www.example.com")
	r.ShouldCache = true
	engine.Add(r)

To observe request lifecycles, install a Delivery. The CallbackDelivery
implementation fans the engine's lifecycle events out to optional
functions invoked on the executing worker:

	engine.Delivery = &fetchq.CallbackDelivery{
		OnResponse: func(r *request.Request, resp *request.NetworkResponse) {
			fmt.Println(r.URL, resp.StatusCode, len(resp.Data))
		},
		OnError: func(r *request.Request, err error) {
			fmt.Println(r.URL, err)
		},
	}

For control over retries and per-attempt timeouts, attach a retry
policy from package retry to each request:

	r.Policy = retry.NewBackoff(time.Second, 3, 1.0)

For a shared cache, plug in a backend from package cache:

	engine.Cache, err = cache.NewRedis(ctx, cache.RedisConfig{Addr: "localhost:6379"})

For control over the wire, configure a transport.HTTPStack (or any
transport.Stack implementation) and hand it to the engine:

	stack := transport.NewHTTPStack()
	stack.UserAgent = "my-app/1.0"
	engine.Network = &fetchq.BasicNetwork{Stack: stack}

Errors delivered by the engine are always of type *Error and carry a
Kind from the sealed set (KindTimeout, KindNoConnection,
KindAuthFailure, KindServerError, KindNetworkError, KindParseError,
KindRedirect, KindUnknown), along with the last network response seen,
when one exists.
*/
package fetchq
