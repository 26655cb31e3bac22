package browser

// Injected scripts. Each is a function expression evaluated through the
// CDP Runtime domain; element-bound scripts use function() syntax so
// that this is the element. Results cross the wire as JSON strings
// rather than remote object graphs: one round trip per call.

// captureScript serializes the selected element: its ancestor chain
// (outer to inner, excluding body and the root), the full subtree, and
// per node the complete getComputedStyle enumeration plus the
// generated-content styles the pseudo synthesizer needs. Node kinds
// match the snip tagged variants: 0 element, 1 text, 2 other.
const captureScript = `function() {
	function styleOf(view, el) {
		var cs = view.getComputedStyle(el);
		var decls = [];
		for (var i = 0; i < cs.length; i++) {
			var name = cs.item(i);
			decls.push({
				name: name,
				value: cs.getPropertyValue(name),
				important: cs.getPropertyPriority(name) === 'important'
			});
		}
		return decls;
	}
	function pseudoOf(el, pos) {
		var cs;
		try {
			cs = window.getComputedStyle(el, '::' + pos);
		} catch (e) {
			return null;
		}
		if (!cs) return null;
		return [
			{name: 'content', value: cs.getPropertyValue('content')},
			{name: 'display', value: cs.getPropertyValue('display')},
			{name: 'color', value: cs.getPropertyValue('color')},
			{name: 'font', value: cs.getPropertyValue('font')}
		];
	}
	function capture(node, deep) {
		if (node.nodeType === Node.TEXT_NODE) {
			return {kind: 1, text: node.nodeValue};
		}
		if (node.nodeType !== Node.ELEMENT_NODE) {
			return {kind: 2};
		}
		var out = {
			kind: 0,
			tag: node.tagName.toLowerCase(),
			attrs: [],
			style: styleOf(window, node),
			children: []
		};
		for (var i = 0; i < node.attributes.length; i++) {
			var a = node.attributes[i];
			out.attrs.push({key: a.name, val: a.value});
		}
		var before = pseudoOf(node, 'before');
		if (before) out.before = before;
		var after = pseudoOf(node, 'after');
		if (after) out.after = after;
		if (deep) {
			for (var c = node.firstChild; c; c = c.nextSibling) {
				out.children.push(capture(c, true));
			}
		}
		return out;
	}
	var chain = [];
	for (var p = this.parentElement; p && p !== document.body && p !== document.documentElement; p = p.parentElement) {
		chain.unshift(p);
	}
	return JSON.stringify({
		title: document.title,
		url: document.location.href,
		chain: chain.map(function(a) { return capture(a, false); }),
		target: capture(this, true)
	});
}`

// defaultStyleScript instantiates an unstyled tag inside a hidden,
// same-origin iframe sandbox and returns its computed style. The iframe
// is created lazily and cached on the window so repeated tags reuse one
// rendering context; closeSandboxScript removes it.
const defaultStyleScript = `function(tag) {
	var frame = window.__domsnip_sandbox__;
	if (!frame || !frame.isConnected) {
		frame = document.createElement('iframe');
		frame.style.cssText = 'position:absolute;left:-9999px;top:-9999px;width:16px;height:16px;visibility:hidden;';
		document.documentElement.appendChild(frame);
		window.__domsnip_sandbox__ = frame;
	}
	var doc = frame.contentDocument;
	if (!doc || !doc.body) {
		throw new Error('sandbox document unavailable');
	}
	var el = doc.createElement(tag);
	doc.body.appendChild(el);
	var cs = frame.contentWindow.getComputedStyle(el);
	var decls = [];
	for (var i = 0; i < cs.length; i++) {
		var name = cs.item(i);
		decls.push({name: name, value: cs.getPropertyValue(name)});
	}
	el.remove();
	return JSON.stringify(decls);
}`

const closeSandboxScript = `function() {
	var frame = window.__domsnip_sandbox__;
	if (frame) {
		frame.remove();
		delete window.__domsnip_sandbox__;
	}
}`

// bodyValueScript reads a custom property from the body's computed
// style.
const bodyValueScript = `function(name) {
	if (!document.body) return '';
	return window.getComputedStyle(document.body).getPropertyValue(name).trim();
}`

// inlineValueScript finds the first element whose inline style mentions
// the name and reads its computed value for that property.
const inlineValueScript = `function(name) {
	var els = document.querySelectorAll('[style]');
	for (var i = 0; i < els.length; i++) {
		var el = els[i];
		if (el.getAttribute('style').indexOf(name) === -1) continue;
		var v = window.getComputedStyle(el).getPropertyValue(name).trim();
		if (v !== '') return v;
	}
	return '';
}`
