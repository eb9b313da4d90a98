package htmx

// SwapStrategy defines how HTMX should swap content into the target element.
type SwapStrategy string

const (
	SwapInnerHTML SwapStrategy = "innerHTML"
	SwapOuterHTML SwapStrategy = "outerHTML"
	SwapBeforeEnd SwapStrategy = "beforeend"
	SwapDelete    SwapStrategy = "delete"
	SwapNone      SwapStrategy = "none"
)

// OOB returns the hx-swap-oob attribute value for an out-of-band swap.
// An empty strategy yields "true", which HTMX treats as outerHTML by id.
func OOB(strategy SwapStrategy) string {
	if strategy == "" {
		return "true"
	}
	return string(strategy)
}
