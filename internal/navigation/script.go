package navigation

import "fmt"

// BindingName is the host function the intercept script calls.
const BindingName = "__appshellNavigate"

// InterceptScript routes link clicks and window.open through the host. The
// host answers true when the target may load in place.
func InterceptScript() string {
	return fmt.Sprintf(`
(function() {
	var ask = window[%[1]q];
	if (typeof ask !== 'function') return;

	function route(href, inPlace) {
		ask(href).then(function(allowed) {
			if (allowed && inPlace) window.location.href = href;
		}).catch(function() {});
	}

	document.addEventListener('click', function(e) {
		var target = e.target;
		while (target && target.tagName !== 'A') {
			target = target.parentElement;
		}
		if (!target || !target.href) return;
		if (target.href.indexOf('#') === 0) return;
		try {
			var url = new URL(target.href, window.location.href);
			if (url.origin === window.location.origin && url.pathname === window.location.pathname && url.hash) return;
		} catch (err) {}
		e.preventDefault();
		route(target.href, true);
	}, true);

	window.open = function(href) {
		if (href) route(String(href), false);
		return null;
	};
})();
`, BindingName)
}
