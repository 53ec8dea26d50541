// Package prefs holds the display preferences of describeit: colour theme,
// text size and font family. A single Controller owns the preferences and
// is injected into every view that needs them; views subscribe to receive
// the resolved Style whenever it changes.
package prefs
