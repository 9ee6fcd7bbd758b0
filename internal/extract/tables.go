package extract

// TieBreak selects the interpretation for member names that exist on more
// than one built-in (see ambiguousMethods). Syntax alone cannot tell an
// array receiver from a string receiver, so the choice is a policy knob,
// not an inference.
type TieBreak string

const (
	// TieBreakString biases ambiguous methods toward the String built-in.
	TieBreakString TieBreak = "string"
	// TieBreakArray biases ambiguous methods toward the Array built-in.
	TieBreakArray TieBreak = "array"
)

// Tables holds the curated syntax-to-feature mapping tables the extractors
// consult. Defaults returns the built-in set; rule scripts may extend a
// copy before handing it to an extractor.
type Tables struct {
	// APIPaths maps exact dotted member paths to feature IDs.
	APIPaths map[string]string
	// Globals maps bare global function and constructor names to feature IDs.
	Globals map[string]string
	// AtRules maps at-rule keywords whose feature ID is not simply
	// css.at-rules.<keyword>. Keywords absent here map verbatim.
	AtRules map[string]string
	// Attributes maps "tag.attr" pairs to element-scoped feature IDs.
	// Pairs absent here fall back to html.global_attributes.<attr>.
	Attributes map[string]string
	// TieBreak resolves ambiguous built-in method names.
	TieBreak TieBreak
}

// Defaults returns a fresh copy of the built-in mapping tables, safe for
// the caller to extend.
func Defaults() *Tables {
	return &Tables{
		APIPaths:   cloneTable(defaultAPIPaths),
		Globals:    cloneTable(defaultGlobals),
		AtRules:    cloneTable(defaultAtRules),
		Attributes: cloneTable(defaultAttributes),
		TieBreak:   TieBreakString,
	}
}

func cloneTable(src map[string]string) map[string]string {
	dst := make(map[string]string, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// defaultAPIPaths is the curated whole-path table for common multi-segment
// platform APIs. Checked first, before any heuristic.
var defaultAPIPaths = map[string]string{
	"navigator.clipboard.writeText": "api.Clipboard.writeText",
	"navigator.clipboard.readText":  "api.Clipboard.readText",
	"navigator.clipboard.write":     "api.Clipboard.write",
	"navigator.clipboard.read":      "api.Clipboard.read",

	"navigator.serviceWorker.register": "api.ServiceWorkerContainer.register",
	"navigator.serviceWorker.ready":    "api.ServiceWorkerContainer.ready",

	"navigator.geolocation.getCurrentPosition": "api.Geolocation.getCurrentPosition",
	"navigator.geolocation.watchPosition":      "api.Geolocation.watchPosition",

	"navigator.mediaDevices.getUserMedia":     "api.MediaDevices.getUserMedia",
	"navigator.mediaDevices.getDisplayMedia":  "api.MediaDevices.getDisplayMedia",
	"navigator.mediaDevices.enumerateDevices": "api.MediaDevices.enumerateDevices",

	"navigator.wakeLock.request":        "api.WakeLock.request",
	"navigator.bluetooth.requestDevice": "api.Bluetooth.requestDevice",
	"navigator.usb.requestDevice":       "api.USB.requestDevice",

	"navigator.share":      "api.Navigator.share",
	"navigator.canShare":   "api.Navigator.canShare",
	"navigator.sendBeacon": "api.Navigator.sendBeacon",
	"navigator.vibrate":    "api.Navigator.vibrate",

	"document.startViewTransition": "api.Document.startViewTransition",
	"document.querySelector":       "api.Document.querySelector",
	"document.querySelectorAll":    "api.Document.querySelectorAll",
	"document.getElementById":      "api.Document.getElementById",
	"document.createElement":       "api.Document.createElement",
	"document.exitFullscreen":      "api.Document.exitFullscreen",

	"window.matchMedia":         "api.Window.matchMedia",
	"window.showOpenFilePicker": "api.Window.showOpenFilePicker",
	"window.showSaveFilePicker": "api.Window.showSaveFilePicker",

	"crypto.randomUUID":      "api.Crypto.randomUUID",
	"crypto.getRandomValues": "api.Crypto.getRandomValues",
	"crypto.subtle.digest":   "api.SubtleCrypto.digest",
	"crypto.subtle.encrypt":  "api.SubtleCrypto.encrypt",

	"history.pushState":    "api.History.pushState",
	"history.replaceState": "api.History.replaceState",

	"Object.entries":     "javascript.builtins.Object.entries",
	"Object.fromEntries": "javascript.builtins.Object.fromEntries",
	"Object.assign":      "javascript.builtins.Object.assign",
	"Object.hasOwn":      "javascript.builtins.Object.hasOwn",
	"Array.from":         "javascript.builtins.Array.from",
	"Array.isArray":      "javascript.builtins.Array.isArray",
	"Promise.allSettled": "javascript.builtins.Promise.allSettled",
	"Promise.any":        "javascript.builtins.Promise.any",
	"Promise.try":        "javascript.builtins.Promise.try",
}

// defaultGlobals is the curated table for bare global-function and
// constructor names.
var defaultGlobals = map[string]string{
	"fetch":                 "api.fetch",
	"structuredClone":       "api.structuredClone",
	"queueMicrotask":        "api.queueMicrotask",
	"createImageBitmap":     "api.createImageBitmap",
	"requestAnimationFrame": "api.Window.requestAnimationFrame",
	"requestIdleCallback":   "api.Window.requestIdleCallback",
	"reportError":           "api.Window.reportError",

	"IntersectionObserver": "api.IntersectionObserver",
	"ResizeObserver":       "api.ResizeObserver",
	"MutationObserver":     "api.MutationObserver",
	"PerformanceObserver":  "api.PerformanceObserver",
	"AbortController":      "api.AbortController",
	"BroadcastChannel":     "api.BroadcastChannel",
	"MessageChannel":       "api.MessageChannel",
	"WebSocket":            "api.WebSocket",
	"EventSource":          "api.EventSource",
	"Worker":               "api.Worker",
	"SharedWorker":         "api.SharedWorker",
	"URLPattern":           "api.URLPattern",
	"CustomEvent":          "api.CustomEvent",
}

// defaultAtRules overrides at-rule keywords whose dataset ID differs from
// css.at-rules.<keyword>. The @page margin boxes are recorded under the
// page at-rule; @document survives only as the -moz-prefixed form.
var defaultAtRules = map[string]string{
	"top-left":      "css.at-rules.page",
	"top-center":    "css.at-rules.page",
	"top-right":     "css.at-rules.page",
	"bottom-left":   "css.at-rules.page",
	"bottom-center": "css.at-rules.page",
	"bottom-right":  "css.at-rules.page",
	"document":      "css.at-rules.document",
}

// storageObjects are left-segment names that identify a Web Storage
// receiver regardless of the member accessed.
var storageObjects = map[string]bool{
	"localStorage":   true,
	"sessionStorage": true,
}

// arrayOnlyMethods are member names that exist on Array but not String.
var arrayOnlyMethods = map[string]bool{
	"flat":          true,
	"flatMap":       true,
	"findLast":      true,
	"findLastIndex": true,
	"copyWithin":    true,
	"fill":          true,
	"toSorted":      true,
	"toReversed":    true,
	"toSpliced":     true,
	"with":          true,
}

// stringOnlyMethods are member names that exist on String but not Array.
var stringOnlyMethods = map[string]bool{
	"padStart":      true,
	"padEnd":        true,
	"codePointAt":   true,
	"normalize":     true,
	"repeat":        true,
	"replaceAll":    true,
	"trimStart":     true,
	"trimEnd":       true,
	"localeCompare": true,
	"isWellFormed":  true,
	"toWellFormed":  true,
}

// ambiguousMethods exist on both Array and String; they resolve through
// Tables.TieBreak rather than any receiver-type guess.
var ambiguousMethods = map[string]bool{
	"includes":    true,
	"at":          true,
	"indexOf":     true,
	"lastIndexOf": true,
	"slice":       true,
	"concat":      true,
}

// rootObjects are well-known roots for the prefix-pattern fallback: a path
// rooted at one of these synthesizes api.<Root>.<member>.
var rootObjects = map[string]string{
	"navigator": "Navigator",
	"document":  "Document",
	"window":    "Window",
}

// ignoredAttributes are universally common attributes that never identify
// a discrete platform feature.
var ignoredAttributes = map[string]bool{
	"class": true,
	"id":    true,
	"style": true,
	"title": true,
	"lang":  true,
	"dir":   true,
}

// defaultAttributes maps notable (element, attribute) pairs to
// element-scoped feature IDs.
var defaultAttributes = map[string]string{
	"img.loading":             "html.elements.img.loading",
	"img.srcset":              "html.elements.img.srcset",
	"img.sizes":               "html.elements.img.sizes",
	"img.decoding":            "html.elements.img.decoding",
	"img.fetchpriority":       "html.elements.img.fetchpriority",
	"iframe.loading":          "html.elements.iframe.loading",
	"iframe.allow":            "html.elements.iframe.allow",
	"iframe.sandbox":          "html.elements.iframe.sandbox",
	"a.download":              "html.elements.a.download",
	"a.ping":                  "html.elements.a.ping",
	"script.nomodule":         "html.elements.script.nomodule",
	"script.defer":            "html.elements.script.defer",
	"script.async":            "html.elements.script.async",
	"video.playsinline":       "html.elements.video.playsinline",
	"input.capture":           "html.elements.input.capture",
	"form.novalidate":         "html.elements.form.novalidate",
	"template.shadowrootmode": "html.elements.template.shadowrootmode",
	"link.fetchpriority":      "html.elements.link.fetchpriority",
	"link.blocking":           "html.elements.link.blocking",
	"textarea.dirname":        "html.elements.textarea.dirname",
	"dialog.open":             "html.elements.dialog.open",
	"details.open":            "html.elements.details.open",
}
