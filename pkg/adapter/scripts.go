package adapter

// Injected page scripts. All state the scripts keep lives under window.__maestro
// so a re-attach can always find and clean up its predecessor.

// discoverScript enumerates audio/video elements and returns the feature set
// the scoring algorithm consumes, in DOM order.
const discoverScript = `() => {
	const out = [];
	document.querySelectorAll('audio, video').forEach((el, index) => {
		const rect = el.getBoundingClientRect();
		const style = window.getComputedStyle(el);
		out.push({
			index: index,
			remoteDisabled: el.disableRemotePlayback === true,
			notReady: el.readyState < 2,
			paused: el.paused,
			currentTime: el.currentTime || 0,
			duration: Number.isFinite(el.duration) ? el.duration : 0,
			visible: rect.width > 0 && rect.height > 0 && style.visibility !== 'hidden',
			video: el.tagName === 'VIDEO',
			muted: el.muted,
			hasSource: !!(el.currentSrc || el.src || el.querySelector('source')),
		});
	});
	return out;
}`

// attachScript wires playback-state listeners on the element at the given
// discovery index and reports every change through the __maestroEmit binding.
// Attaching tears down any previous attachment first.
const attachScript = `(index) => {
	const els = document.querySelectorAll('audio, video');
	const el = els[index];
	if (!el) return false;

	if (window.__maestro && window.__maestro.cleanup) {
		window.__maestro.cleanup();
	}

	const readState = () => ({
		paused: el.paused,
		muted: el.muted,
		volume: el.volume,
		currentTime: el.currentTime || 0,
		duration: Number.isFinite(el.duration) ? el.duration : 0,
		canSeek: !!(el.seekable && el.seekable.length > 0),
		ended: el.ended,
	});

	const readMeta = () => {
		const og = document.querySelector('meta[property="og:image"]');
		const icon = document.querySelector('link[rel~="icon"]');
		return {
			title: document.title,
			artworkUrl: (og && og.content) || el.poster || '',
			siteUrl: location.href,
			siteIcon: (icon && icon.href) || '',
		};
	};

	const report = (reason) => {
		const meta = readMeta();
		window.__maestroEmit({
			reason: reason,
			title: meta.title,
			artworkUrl: meta.artworkUrl,
			siteUrl: meta.siteUrl,
			siteIcon: meta.siteIcon,
			state: readState(),
		});
	};

	const events = ['play', 'pause', 'timeupdate', 'durationchange', 'volumechange', 'seeked', 'emptied', 'ended'];
	const listeners = [];
	events.forEach((name) => {
		const fn = () => report(name);
		el.addEventListener(name, fn);
		listeners.push([name, fn]);
	});

	window.__maestro = {
		el: el,
		index: index,
		report: report,
		cleanup: () => {
			listeners.forEach(([name, fn]) => el.removeEventListener(name, fn));
			window.__maestro = null;
		},
	};

	report('attach');
	return true;
}`

// detachScript removes the current attachment's listeners.
const detachScript = `() => {
	if (window.__maestro && window.__maestro.cleanup) {
		window.__maestro.cleanup();
	}
	return true;
}`

// observeScript installs a MutationObserver that pings the __maestroRescan
// binding whenever a qualifying node appears anywhere in the tree. Installed
// once per context; survives attach/detach cycles.
const observeScript = `() => {
	if (window.__maestroObserver) return true;
	const qualifies = (node) => {
		if (!(node instanceof Element)) return false;
		if (node.matches('audio, video')) return true;
		return !!node.querySelector('audio, video');
	};
	const observer = new MutationObserver((mutations) => {
		for (const mutation of mutations) {
			for (const node of mutation.addedNodes) {
				if (qualifies(node)) {
					window.__maestroRescan();
					return;
				}
			}
		}
	});
	observer.observe(document.documentElement, { childList: true, subtree: true });
	window.__maestroObserver = observer;
	return true;
}`

// stateScript reads the current playback state of the attached element.
const stateScript = `() => {
	const m = window.__maestro;
	if (!m || !m.el) return null;
	const el = m.el;
	return {
		paused: el.paused,
		muted: el.muted,
		volume: el.volume,
		currentTime: el.currentTime || 0,
		duration: Number.isFinite(el.duration) ? el.duration : 0,
		canSeek: !!(el.seekable && el.seekable.length > 0),
		ended: el.ended,
	};
}`

// reportScript forces one immediate snapshot from the attached element.
const reportScript = `() => {
	const m = window.__maestro;
	if (!m || !m.report) return false;
	m.report('forced');
	return true;
}`

// Control snippets. Each returns false when no element is attached so the
// caller can distinguish a dead attachment from a page error.

const playScript = `() => {
	const m = window.__maestro;
	if (!m || !m.el) return false;
	const p = m.el.play();
	if (p && p.catch) p.catch(() => {});
	return true;
}`

const pauseScript = `() => {
	const m = window.__maestro;
	if (!m || !m.el) return false;
	m.el.pause();
	return true;
}`

const seekScript = `(seconds) => {
	const m = window.__maestro;
	if (!m || !m.el) return false;
	const el = m.el;
	let target = Math.max(0, seconds);
	if (Number.isFinite(el.duration)) {
		target = Math.min(target, el.duration);
	}
	el.currentTime = target;
	return true;
}`

const volumeScript = `(volume) => {
	const m = window.__maestro;
	if (!m || !m.el) return false;
	m.el.volume = Math.min(1, Math.max(0, volume));
	return true;
}`

const muteScript = `(muted) => {
	const m = window.__maestro;
	if (!m || !m.el) return false;
	m.el.muted = muted;
	return true;
}`
