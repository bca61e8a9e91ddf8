package server

import (
	"strconv"
	"strings"
	"time"
)

const consentDelayToken = "{{CONSENT_DELAY_MS}}"

// RenderHomepage returns the homepage HTML with the consent dialog injected
// after delay. When disabled, the dialog is never rendered.
func RenderHomepage(delay time.Duration, disabled bool) string {
	ms := int64(-1)
	if !disabled {
		ms = delay.Milliseconds()
	}
	return strings.Replace(homepageHTML, consentDelayToken, strconv.FormatInt(ms, 10), 1)
}

// homepageHTML mirrors the parts of the production homepage the suite
// touches: the Cookiebot dialog, the hero search box and the suggestion list.
const homepageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8">
    <title>Discover Ireland | Fill your heart with Ireland</title>
    <style>
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
            margin: 0;
            background: #f5f5f5;
        }
        .Hero {
            padding: 80px 20px;
            background: #1d4f3a;
            color: white;
            text-align: center;
        }
        #Hero__Search {
            width: 420px;
            max-width: 90%;
            padding: 12px;
            font-size: 16px;
            border-radius: 4px;
            border: none;
        }
        .Hero__Results {
            list-style: none;
            padding: 0;
            margin: 10px auto;
            width: 420px;
            max-width: 90%;
            text-align: left;
        }
        .gtm-searchDestination {
            display: block;
            padding: 8px 12px;
            background: white;
            color: #1d4f3a;
            border-bottom: 1px solid #eee;
        }
        #CybotCookiebotDialog {
            position: fixed;
            bottom: 0;
            left: 0;
            right: 0;
            padding: 20px;
            background: white;
            box-shadow: 0 -2px 4px rgba(0,0,0,0.2);
            z-index: 1000;
        }
    </style>
</head>
<body>
    <section class="Hero">
        <h1>Fill your heart with Ireland</h1>
        <input id="Hero__Search" type="text" placeholder="Search destinations" autocomplete="off">
        <ul class="Hero__Results" id="Hero__Results"></ul>
    </section>

    <script>
        const consentDelay = {{CONSENT_DELAY_MS}};
        const input = document.getElementById('Hero__Search');
        const results = document.getElementById('Hero__Results');
        let seq = 0;

        function render(hits) {
            results.innerHTML = '';
            for (const hit of hits) {
                const li = document.createElement('li');
                const a = document.createElement('a');
                a.className = 'gtm-searchDestination';
                a.href = hit.url;
                a.textContent = hit.title + (hit.county ? ', ' + hit.county : '');
                li.appendChild(a);
                results.appendChild(li);
            }
        }

        // Suggestions follow key events, like the production autocomplete,
        // so text inserted without keystrokes fetches nothing.
        input.addEventListener('keyup', async () => {
            const mine = ++seq;
            try {
                const resp = await fetch('/indexes/destinations', {
                    method: 'POST',
                    headers: {'Content-Type': 'application/json'},
                    body: JSON.stringify({q: input.value, limit: 6}),
                });
                const body = await resp.json();
                if (mine === seq) {
                    render(body.hits || []);
                }
            } catch (e) {
                console.error('suggestion request failed', e);
            }
        });

        if (consentDelay >= 0) {
            setTimeout(() => {
                const dialog = document.createElement('div');
                dialog.id = 'CybotCookiebotDialog';
                dialog.innerHTML = '<p>This website uses cookies.</p>' +
                    '<button id="CybotCookiebotDialogBodyButtonAccept" type="button">Allow all</button>';
                document.body.appendChild(dialog);
                document.getElementById('CybotCookiebotDialogBodyButtonAccept')
                    .addEventListener('click', () => { dialog.style.display = 'none'; });
            }, consentDelay);
        }
    </script>
</body>
</html>
`
