package ipc

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// BindingName is the single host function the bridge script calls.
const BindingName = "__appshellInvoke"

// Binding adapts the router to the shape the webview binds: two arguments,
// one result or an error.
func (r *Router) Binding() func(channel string, payload json.RawMessage) (any, error) {
	return func(channel string, payload json.RawMessage) (any, error) {
		return r.Invoke(context.Background(), channel, payload)
	}
}

// BridgeScript defines window.ipcClient in the UI. It mirrors the channel
// table so the UI never spells channel names itself.
func BridgeScript() string {
	var channels []string
	for _, ch := range Channels {
		channels = append(channels, fmt.Sprintf("%q: %q", strings.ToUpper(string(ch)), string(ch)))
	}

	return fmt.Sprintf(`
(function() {
	var call = window[%[1]q];
	var CHANNELS = Object.freeze({%[2]s});

	function invoke(channel, payload) {
		if (typeof call !== 'function') {
			return Promise.reject(new Error('host bridge unavailable'));
		}
		return call(channel, payload === undefined ? null : payload);
	}

	function noop() {}

	Object.defineProperty(window, 'ipcClient', {
		value: Object.freeze({
			CHANNELS: CHANNELS,
			invoke: Object.freeze({
				getConfig: function() { return invoke(CHANNELS.GET_CONFIG); },
				updateUserPreferences: function(prefs) { return invoke(CHANNELS.UPDATE_USER_PREFERENCES, prefs); },
				getUserData: function() { return invoke(CHANNELS.GET_USER_DATA); }
			}),
			on: noop,
			once: noop,
			off: noop
		}),
		writable: false,
		configurable: false
	});
})();
`, BindingName, strings.Join(channels, ", "))
}
