// Package runctx carries request and pipeline run identifiers on the context.
package runctx

import "context"

type ContextKey string

const (
	RequestIDKey ContextKey = "requestID"
	MethodKey    ContextKey = "method"
	RouteKey     ContextKey = "route"
	RemoteIPKey  ContextKey = "remoteIP"
	RunIDKey     ContextKey = "runID"
	TriggerKey   ContextKey = "trigger"
)

func SetRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

func SetMethod(ctx context.Context, method string) context.Context {
	return context.WithValue(ctx, MethodKey, method)
}

func GetMethod(ctx context.Context) string {
	if method, ok := ctx.Value(MethodKey).(string); ok {
		return method
	}
	return ""
}

func SetRoute(ctx context.Context, route string) context.Context {
	return context.WithValue(ctx, RouteKey, route)
}

func GetRoute(ctx context.Context) string {
	if route, ok := ctx.Value(RouteKey).(string); ok {
		return route
	}
	return ""
}

func SetRemoteIP(ctx context.Context, remoteIP string) context.Context {
	return context.WithValue(ctx, RemoteIPKey, remoteIP)
}

func GetRemoteIP(ctx context.Context) string {
	if remoteIP, ok := ctx.Value(RemoteIPKey).(string); ok {
		return remoteIP
	}
	return ""
}

// SetRunID tags the context with the pipeline run being executed.
func SetRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, RunIDKey, runID)
}

func GetRunID(ctx context.Context) string {
	if runID, ok := ctx.Value(RunIDKey).(string); ok {
		return runID
	}
	return ""
}

// SetTrigger records what started the run, "schedule" or "manual".
func SetTrigger(ctx context.Context, trigger string) context.Context {
	return context.WithValue(ctx, TriggerKey, trigger)
}

func GetTrigger(ctx context.Context) string {
	if trigger, ok := ctx.Value(TriggerKey).(string); ok {
		return trigger
	}
	return ""
}
