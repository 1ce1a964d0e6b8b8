// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package cache is a durable TTL key/value store that sits between the CLI
// and the recipe API. The whole cache is one JSON document on a storage
// medium (a file by default, optionally an S3 object). Entries carry a
// storedAt timestamp; reads filter on freshness, eviction is a separate
// startup-time pass, and a failed fetch falls back to whatever stale value
// is still on disk.
package cache
