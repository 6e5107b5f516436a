// Package printing turns report data into PDF documents. HTML is produced
// from html/template layouts and printed by headless Chrome over the
// DevTools protocol.
package printing
