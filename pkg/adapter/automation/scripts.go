package automation

// Injected snippets for the synthetic-input strategies. Each returns a
// boolean so Go can tell "dispatched" from "no usable target".

// hitTestPressScript re-resolves whatever element actually sits at the
// coordinates (overlays intercept real input there) and dispatches a full
// synthetic press sequence on it.
const hitTestPressScript = `({ x, y }) => {
	const el = document.elementFromPoint(x, y);
	if (!el) return false;
	const opts = { bubbles: true, cancelable: true, view: window, clientX: x, clientY: y };
	el.dispatchEvent(new PointerEvent('pointerdown', opts));
	el.dispatchEvent(new MouseEvent('mousedown', opts));
	el.dispatchEvent(new PointerEvent('pointerup', opts));
	el.dispatchEvent(new MouseEvent('mouseup', opts));
	el.dispatchEvent(new MouseEvent('click', opts));
	return true;
}`

// rangeSetScript writes a range input's value through the native setter so
// framework-managed inputs notice, then fires the notifications they listen
// for.
const rangeSetScript = `({ selector, value }) => {
	const el = document.querySelector(selector);
	if (!el || el.type !== 'range') return false;
	const setter = Object.getOwnPropertyDescriptor(HTMLInputElement.prototype, 'value').set;
	setter.call(el, String(value));
	el.dispatchEvent(new Event('input', { bubbles: true }));
	el.dispatchEvent(new Event('change', { bubbles: true }));
	return true;
}`

// descendantClickScript invokes click on the control itself or its first
// clickable descendant. Last resort after real and synthetic input missed.
const descendantClickScript = `(selector) => {
	const root = document.querySelector(selector);
	if (!root) return false;
	let el = null;
	if (root.matches('button, a, [role="button"]')) {
		el = root;
	} else {
		el = root.querySelector('button, a, [role="button"], [onclick]');
	}
	if (!el) return false;
	el.click();
	return true;
}`

// affordanceScript reports whether any selector in the set matches a visible
// element, and returns its accessible label and selector when one does.
const affordanceScript = `(selectors) => {
	for (const selector of selectors) {
		const el = document.querySelector(selector);
		if (!el) continue;
		const rect = el.getBoundingClientRect();
		if (rect.width === 0 || rect.height === 0) continue;
		return {
			selector: selector,
			label: el.getAttribute('aria-label') || el.getAttribute('title') || el.textContent || '',
		};
	}
	return null;
}`

// textScript returns the trimmed text of the first matching element.
const textScript = `(selectors) => {
	for (const selector of selectors) {
		const el = document.querySelector(selector);
		if (el && el.textContent) return el.textContent.trim();
	}
	return '';
}`

// sliderScript reads the first matching slider's value and scale.
const sliderScript = `(selectors) => {
	for (const selector of selectors) {
		const el = document.querySelector(selector);
		if (!el) continue;
		if (el.tagName === 'INPUT') {
			return { value: el.value, max: el.max || '' };
		}
		const now = el.getAttribute('aria-valuenow');
		if (now !== null) {
			return { value: now, max: el.getAttribute('aria-valuemax') || '' };
		}
	}
	return null;
}`

// artworkScript returns the first matching element's image URL.
const artworkScript = `(selectors) => {
	for (const selector of selectors) {
		const el = document.querySelector(selector);
		if (!el) continue;
		if (el.tagName === 'IMG' && el.src) return el.src;
		const img = el.querySelector('img');
		if (img && img.src) return img.src;
		const bg = window.getComputedStyle(el).backgroundImage;
		const match = bg && bg.match(/url\("?([^")]+)"?\)/);
		if (match) return match[1];
	}
	return '';
}`

// metaObserveScript watches the track-metadata regions and pings the
// __maestroPoke binding when they change, so track switches surface faster
// than the poll tick.
const metaObserveScript = `(selectors) => {
	if (window.__maestroMetaObserver) return true;
	const targets = [];
	for (const selector of selectors) {
		const el = document.querySelector(selector);
		if (el) targets.push(el);
	}
	if (targets.length === 0) return false;
	const observer = new MutationObserver(() => window.__maestroPoke());
	for (const el of targets) {
		observer.observe(el, { childList: true, subtree: true, characterData: true });
	}
	window.__maestroMetaObserver = observer;
	return true;
}`

// metaDisconnectScript tears the metadata observer down.
const metaDisconnectScript = `() => {
	if (window.__maestroMetaObserver) {
		window.__maestroMetaObserver.disconnect();
		window.__maestroMetaObserver = null;
	}
	return true;
}`
