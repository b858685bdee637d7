// Package pipeline turns suspendable service operations into request handlers.
//
// An Operation declares its parameter names and an optional validator.Schema
// next to its body. Builder wraps every operation of a Service with
// schema validation and call tracing, ToAsync drives a suspendable body on a
// trampoline and delivers its outcome through a single-shot Future, and
// Classifier maps whatever failure escapes into an HTTP status and envelope.
//
// A typical service:
//
//	svc := builder.Build(pipeline.Service{
//	    "get": {
//	        Name:   "get",
//	        Params: []string{"id"},
//	        Schema: validator.Schema{"id": validator.Integer().Required()},
//	        Fn: func(ctx context.Context, await pipeline.Await, args pipeline.Args) (any, error) {
//	            return await(pipeline.Go(ctx, func(ctx context.Context) (any, error) {
//	                return repo.FindOne(ctx, args[0].(int))
//	            }))
//	        },
//	    },
//	})
package pipeline
