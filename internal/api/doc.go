// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api implements the transport client for the TagWise backend:
// JSON endpoints for chatbot initialization and conversation CRUD, a
// streaming NDJSON ask endpoint, CSRF token handling, and a persistent
// cookie store for the login session.
package api
