// Package resilient turns arbitrary outbound network calls into bounded,
// classified, retryable operations.
//
// The central type is ClassifiedError, produced by Classify, which maps any
// raw failure onto a closed taxonomy of kinds with a derived recovery
// strategy and retry eligibility. Around it sit an Executor that issues one
// bounded attempt, a Scheduler that orchestrates retries with exponential
// backoff and jitter, and a Monitor that tracks connectivity so retries can
// short-circuit while offline.
package resilient
