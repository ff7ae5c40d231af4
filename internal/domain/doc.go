// Package domain models National Weather Service (NWS) warnings and the
// records this engine derives from them.
//
// # Alerts
//
// Alerts arrive from the feed source as JSON payloads carrying an opaque
// globally-unique identifier, the warning event name (e.g. "Severe
// Thunderstorm Warning"), an ordered severity, effective/expires/sent UTC
// timestamps, the free-text warning narrative, the warned area as coordinate
// rings, and the affected SAME/FIPS region codes. An alert is immutable
// except for superseding updates: a payload with the same identifier and a
// later sent timestamp replaces the stored version (replace-on-newer).
//
// # Radar-indicated measurements
//
// Hail diameter (inches) and wind speed (mph) extracted from the warning
// narrative, not direct sensor readings. NWS phrasing is inconsistent, so
// extraction succeeding is the exception: most eligible alerts yield nothing,
// and that absence is a normal outcome, not an error. See the radar package
// for the extraction rules and the hail size lexicon.
//
// # SPC ground truth
//
// SPCReport records come from the NOAA Storm Prediction Center daily storm
// reports (https://www.spc.noaa.gov/climo/reports/): post-event, human- or
// sensor-verified hail/wind/tornado observations with a location and an
// administrative-area code. Verification reports lag real time, so an
// alert's candidate window extends one day past its effective/expires span.
//
// Magnitude units by hazard:
//
//	hail    inches (e.g. 1.75 = golf ball size)
//	wind    miles per hour
//	tornado Enhanced Fujita scale integer, 0-5
//
// # Verification
//
// MatchResult reconciles an alert against its candidate reports. The
// confidence score is a heuristic [0,1] signal of how strongly ground truth
// corroborates the alert, never a statistical estimate. An unverified result
// always carries confidence 0.0 and method "none".
//
// # Webhook subscriptions
//
// WebhookRule is a standing threshold subscription; WebhookDelivery tracks
// the retried, at-most-once-per-pairing notification owed when a rule
// matches. Delivery state survives restarts so retries resume where they
// left off.
package domain
