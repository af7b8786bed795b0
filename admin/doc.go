// Package admin holds the helpers a host admin list view needs to render go-logtrail
// records: filter parsing from query strings, form choices, and list rows with
// action and level badges. Rendering itself stays with the host.
package admin
