package widgets

import "fmt"

// FormatElapsed renders seconds as MM:SS. Both fields are zero-padded to two
// digits; minutes are not wrapped into hours, so 6000 renders as "100:00".
// Negative input is not supported.
func FormatElapsed(seconds int) string {
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
