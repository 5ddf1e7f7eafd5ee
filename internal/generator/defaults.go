package generator

// Built-in template content. Files that allow comments carry patch regions
// so a fresh project can be patched without adding markers by hand.

const blankIndexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1">
    <title>{{ .ProjectName }}</title>
</head>
<body>
    <!-- FORGE-PATCH-START:body -->
    <h1>{{ .ProjectName }}</h1>
    <!-- FORGE-PATCH-END:body -->
</body>
</html>
`

const htmlJSIndexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1">
    <title>{{ .ProjectName }}</title>
    <link rel="stylesheet" href="style.css">
    <!-- FORGE-PATCH-START:head -->
    <!-- FORGE-PATCH-END:head -->
</head>
<body>
    <main id="{{ .Slug }}-app" class="{{ .Slug }}">
        <!-- FORGE-PATCH-START:body -->
        <h1>{{ .ProjectName }}</h1>
        <p>Scaffolded by Forge.</p>
        <!-- FORGE-PATCH-END:body -->
    </main>
    <script src="app.js"></script>
</body>
</html>
`

const htmlJSStyleCSS = `/* Styles for {{ .ProjectName }} */
:root {
    --{{ .Slug }}-accent: #3b6ea5;
}

body {
    font-family: system-ui, sans-serif;
    margin: 0;
    padding: 2rem;
}

/* FORGE-PATCH-START:styles */
.{{ .Slug }} h1 {
    color: var(--{{ .Slug }}-accent);
}
/* FORGE-PATCH-END:styles */
`

const htmlJSAppJS = `// {{ .ProjectName }} ({{ .Abbrev }})
const {{ .PascalName }} = {
    name: "{{ .ProjectName }}",
    slug: "{{ .Slug }}",
};

// FORGE-PATCH-START:init
{{ .PascalName }}.init = function () {
    console.log("{{ .Abbrev }} ready");
};
// FORGE-PATCH-END:init

document.addEventListener("DOMContentLoaded", () => {{ .PascalName }}.init());
`

const landingIndexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1">
    <title>{{ .ProjectName }}</title>
    <link rel="stylesheet" href="style.css">
</head>
<body>
    <header class="{{ .Slug }}-hero">
        <!-- FORGE-PATCH-START:hero -->
        <h1>{{ .ProjectName }}</h1>
        <p>A short pitch goes here.</p>
        <a href="#features">Learn more</a>
        <!-- FORGE-PATCH-END:hero -->
    </header>
    <section id="features">
        <!-- FORGE-PATCH-START:features -->
        <ul>
            <li>Fast</li>
            <li>Simple</li>
        </ul>
        <!-- FORGE-PATCH-END:features -->
    </section>
    <footer>
        <!-- FORGE-PATCH-START:footer -->
        <small>{{ .Abbrev }}</small>
        <!-- FORGE-PATCH-END:footer -->
    </footer>
    <script src="app.js"></script>
</body>
</html>
`

const landingReadme = `# {{ .ProjectName }}

Landing page scaffolded by Forge.

<!-- FORGE-PATCH-START:about -->
Describe the project here.
<!-- FORGE-PATCH-END:about -->
`

const pwaIndexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1">
    <meta name="theme-color" content="#3b6ea5">
    <title>{{ .ProjectName }}</title>
    <link rel="manifest" href="app.webmanifest">
    <link rel="stylesheet" href="style.css">
</head>
<body>
    <main id="{{ .Slug }}-app" class="{{ .Slug }}">
        <!-- FORGE-PATCH-START:body -->
        <h1>{{ .ProjectName }}</h1>
        <!-- FORGE-PATCH-END:body -->
    </main>
    <script src="app.js"></script>
</body>
</html>
`

const pwaAppJS = `// {{ .ProjectName }} ({{ .Abbrev }})
const {{ .PascalName }} = {
    name: "{{ .ProjectName }}",
    slug: "{{ .Slug }}",
};

// FORGE-PATCH-START:init
{{ .PascalName }}.init = function () {
    if ("serviceWorker" in navigator) {
        navigator.serviceWorker.register("sw.js");
    }
};
// FORGE-PATCH-END:init

document.addEventListener("DOMContentLoaded", () => {{ .PascalName }}.init());
`

const pwaWebManifest = `{
    "name": "{{ .ProjectName }}",
    "short_name": "{{ .Abbrev }}",
    "start_url": "index.html",
    "display": "standalone",
    "theme_color": "#3b6ea5",
    "background_color": "#ffffff"
}
`

const pwaServiceWorker = `// Service worker for {{ .ProjectName }}
const CACHE = "{{ .Slug }}-v1";

// FORGE-PATCH-START:assets
const ASSETS = ["index.html", "style.css", "app.js", "app.webmanifest"];
// FORGE-PATCH-END:assets

self.addEventListener("install", (event) => {
    event.waitUntil(caches.open(CACHE).then((cache) => cache.addAll(ASSETS)));
});

self.addEventListener("fetch", (event) => {
    event.respondWith(caches.match(event.request).then((hit) => hit || fetch(event.request)));
});
`

// builtinTemplates lists the templates every registry starts with.
func builtinTemplates() []Template {
	return []Template{
		{
			Name:        "blank",
			Description: "A single index.html",
			Files: []FileContent{
				{Path: "index.html", Content: blankIndexHTML},
			},
		},
		{
			Name:        "html-js",
			Description: "HTML page with a stylesheet and a script",
			Files: []FileContent{
				{Path: "index.html", Content: htmlJSIndexHTML},
				{Path: "style.css", Content: htmlJSStyleCSS},
				{Path: "app.js", Content: htmlJSAppJS},
			},
		},
		{
			Name:        "landing",
			Description: "Marketing landing page with hero, features and footer regions",
			Files: []FileContent{
				{Path: "index.html", Content: landingIndexHTML},
				{Path: "style.css", Content: htmlJSStyleCSS},
				{Path: "app.js", Content: htmlJSAppJS},
				{Path: "README.md", Content: landingReadme},
			},
		},
		{
			Name:        "pwa",
			Description: "Installable progressive web app with a service worker",
			Files: []FileContent{
				{Path: "index.html", Content: pwaIndexHTML},
				{Path: "style.css", Content: htmlJSStyleCSS},
				{Path: "app.js", Content: pwaAppJS},
				{Path: "app.webmanifest", Content: pwaWebManifest},
				{Path: "sw.js", Content: pwaServiceWorker},
			},
		},
	}
}
