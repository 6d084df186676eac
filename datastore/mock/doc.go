/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package mock provides in-memory fakes for testing: DynamoDB, a stand-in for the DynamoDB
// API with fault injection, and Store, an in-memory datastore.Store.
package mock
