// Package drive is a thin client for the cloud drive REST surface the
// library lives on. Every authorized call goes through a single interceptor
// that transparently refreshes an expired bearer token and retries once, so
// callers never see a 401 unless the refresh itself failed.
package drive
