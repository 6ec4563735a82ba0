package templates

const pageTemplate = `{{define "dashboard"}}<!DOCTYPE html>
<html lang="fr">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Analytics Dashboard - Business Intelligence</title>
<script type="module" src="https://cdn.jsdelivr.net/gh/starfederation/datastar@v1.0.0-RC.6/bundles/datastar.js"></script>
<script src="https://cdn.plot.ly/plotly-2.35.2.min.js"></script>
<style>
:root { --bg: #f5f6f8; --fg: #1f2933; --card: #ffffff; --muted: #6b7280; --accent: #2563eb; --border: #e5e7eb; }
.dark { --bg: #111827; --fg: #f3f4f6; --card: #1f2937; --muted: #9ca3af; --accent: #60a5fa; --border: #374151; }
body { margin: 0; font-family: system-ui, sans-serif; }
#app { background: var(--bg); color: var(--fg); min-height: 100vh; padding: 1rem 2rem; }
header { display: flex; align-items: center; justify-content: space-between; }
h1 { font-size: 1.6rem; margin: 0.5rem 0; }
.kpis { display: grid; grid-template-columns: repeat(4, 1fr); gap: 1rem; margin: 1rem 0; }
.card { background: var(--card); border: 1px solid var(--border); border-radius: 8px; padding: 1rem; }
.card h4 { margin: 0.4rem 0 0; font-size: 1.4rem; }
.card span { color: var(--muted); font-size: 0.85rem; }
.tabs button { background: none; border: none; border-bottom: 2px solid transparent; color: var(--fg); padding: 0.6rem 1rem; cursor: pointer; }
.tabs button.active { border-bottom-color: var(--accent); }
.grid { display: grid; grid-template-columns: 2fr 1fr; gap: 1rem; margin-top: 1rem; }
.grid.even { grid-template-columns: 1fr 1fr; }
.panel { display: grid; grid-template-columns: 1fr 2fr; gap: 1rem; margin-top: 1rem; }
.filters { display: flex; flex-wrap: wrap; gap: 1rem; align-items: flex-start; }
.filters fieldset { border: 1px solid var(--border); border-radius: 6px; max-height: 9rem; overflow-y: auto; }
table { width: 100%; border-collapse: collapse; font-size: 0.85rem; }
th, td { text-align: left; padding: 0.45rem; border-bottom: 1px solid var(--border); }
th { cursor: pointer; white-space: nowrap; }
tr.editable { cursor: pointer; }
tr.editable:hover td { background: var(--hover, rgba(127,127,127,0.12)); }
input, select, button { font: inherit; padding: 0.35rem 0.6rem; margin: 0.2rem 0; }
.card input, .card select { width: 100%; box-sizing: border-box; }
.message-success { color: #059669; }
.message-error { color: #dc2626; }
.pager { display: flex; gap: 1rem; align-items: center; margin-top: 0.5rem; }
footer { color: var(--muted); font-size: 0.8rem; margin-top: 2rem; border-top: 1px solid var(--border); padding-top: 0.5rem; }
</style>
<script>
function chartLayout(title, dark) {
  return {
    title: { text: title },
    paper_bgcolor: dark ? '#1f2937' : '#ffffff',
    plot_bgcolor: dark ? '#1f2937' : '#ffffff',
    font: { color: dark ? '#f3f4f6' : '#1f2933' },
    margin: { t: 50, l: 60, r: 20, b: 50 },
  };
}

function renderCharts(report, theme) {
  if (!report || !window.Plotly) { return; }
  const dark = theme === 'dark';
  const cfg = { responsive: true, displaylogo: false };

  Plotly.react('evolution-ca', [{
    type: 'scatter', mode: 'lines+markers',
    x: report.monthly.map(m => m.month), y: report.monthly.map(m => m.amount),
  }], Object.assign(chartLayout("Évolution du Chiffre d'Affaires", dark), {
    xaxis: { title: { text: 'Mois' } }, yaxis: { title: { text: 'CA (€)' } },
  }), cfg);

  Plotly.react('repartition-ca', [{
    type: 'pie', hole: 0.4,
    labels: report.categories.map(c => c.category), values: report.categories.map(c => c.amount),
  }], chartLayout('Répartition par Catégorie', dark), cfg);

  const bars = (id, title, rows) => Plotly.react(id, [{
    type: 'bar', orientation: 'h',
    x: rows.map(r => r.amount).reverse(), y: rows.map(r => r.name).reverse(),
  }], Object.assign(chartLayout(title, dark), { margin: { t: 50, l: 140, r: 20, b: 40 } }), cfg);
  bars('top-produits', 'Top 10 Produits', report.top_products);
  bars('top-clients', 'Top 10 Clients', report.top_clients);

  const ids = [], labels = [], parents = [], values = [];
  for (const node of report.hierarchy) {
    ids.push('cat:' + node.category); labels.push(node.category); parents.push(''); values.push(node.amount);
    for (const child of node.children) {
      ids.push(node.category + '/' + child.product); labels.push(child.product);
      parents.push('cat:' + node.category); values.push(child.amount);
    }
  }
  Plotly.react('sunburst-chart', [{
    type: 'sunburst', branchvalues: 'total', ids: ids, labels: labels, parents: parents, values: values,
  }], chartLayout('Analyse Hiérarchique', dark), cfg);

  Plotly.react('heatmap-chart', [{
    type: 'heatmap', colorscale: 'Viridis',
    x: report.heatmap.hours, y: report.heatmap.weekdays, z: report.heatmap.values,
  }], Object.assign(chartLayout('Heatmap des Ventes par Jour/Heure', dark), {
    xaxis: { title: { text: 'Heure' }, dtick: 1 },
  }), cfg);
}

function resizeCharts() {
  if (!window.Plotly) { return; }
  document.querySelectorAll('.js-plotly-plot').forEach(el => Plotly.Plots.resize(el));
}
</script>
</head>
<body>
<div id="app" class="{{if .Session.Dark}}dark{{end}}" data-signals="{{.Signals}}" data-class:dark="$theme === 'dark'">
<header>
  <h1>Tableau de Bord Commercial</h1>
  {{template "themeToggle" .Session}}
</header>

{{template "kpis" .Report.KPIs}}

<div class="card">
  {{template "filters" .Options}}
</div>

<nav class="tabs">
  <button data-class:active="$tab === 'overview'" data-on:click="$tab = 'overview'; setTimeout(resizeCharts)">Vue d'Ensemble</button>
  <button data-class:active="$tab === 'advanced'" data-on:click="$tab = 'advanced'; setTimeout(resizeCharts)">Analyse Avancée</button>
  <button data-class:active="$tab === 'data'" data-on:click="$tab = 'data'">Données</button>
  <button data-class:active="$tab === 'clients'" data-on:click="$tab = 'clients'">Gestion Clients</button>
  <button data-class:active="$tab === 'products'" data-on:click="$tab = 'products'">Gestion Produits</button>
</nav>

<section data-show="$tab === 'overview'">
  <div class="grid">
    <div class="card" id="evolution-ca"></div>
    <div class="card" id="repartition-ca"></div>
  </div>
  <div class="grid even">
    <div class="card" id="top-produits"></div>
    <div class="card" id="top-clients"></div>
  </div>
</section>

<section data-show="$tab === 'advanced'">
  <div class="grid even">
    <div class="card" id="sunburst-chart"></div>
    <div class="card" id="heatmap-chart"></div>
  </div>
</section>

<section data-show="$tab === 'data'">
  <div class="card">
    <a href="/export/sales.csv" download="export_ventes.csv"><button>Exporter CSV</button></a>
    <a href="/export/sales.xlsx" download="export_ventes.xlsx"><button>Exporter Excel</button></a>
    <input type="search" placeholder="Rechercher..." data-bind:table-search data-on:input__debounce.300ms="@get('/sse/table?page=1')">
    {{template "salesTable" .Table}}
  </div>
</section>

<section data-show="$tab === 'clients'">
  <div class="panel">
    <div class="card">
      <h3>Ajouter/Modifier Client</h3>
      <input placeholder="Nom" data-bind:client-name>
      <input placeholder="Ville" data-bind:client-city>
      <input placeholder="Email" type="email" data-bind:client-email>
      <button data-on:click="@post('/sse/clients')">Ajouter</button>
      <button data-attr:disabled="!$clientId" data-on:click="@put('/sse/clients')">Modifier</button>
      <button data-on:click="@get('/sse/clients/cancel')">Annuler</button>
      {{template "message" .ClientMessage}}
    </div>
    <div class="card">
      {{template "clientTable" .Clients}}
    </div>
  </div>
</section>

<section data-show="$tab === 'products'">
  <div class="panel">
    <div class="card">
      <h3>Ajouter/Modifier Produit</h3>
      <input placeholder="Nom" data-bind:product-name>
      <select data-bind:product-category>
        {{range categories}}<option value="{{.}}">{{.}}</option>{{end}}
      </select>
      <input placeholder="Prix unitaire" type="number" step="0.01" min="0.01" data-bind:product-price>
      <button data-on:click="@post('/sse/products')">Ajouter</button>
      <button data-attr:disabled="!$productId" data-on:click="@put('/sse/products')">Modifier</button>
      <button data-on:click="@get('/sse/products/cancel')">Annuler</button>
      {{template "message" .ProductMessage}}
    </div>
    <div class="card">
      {{template "productTable" .Products}}
    </div>
  </div>
</section>

<div hidden data-effect="renderCharts($_report, $theme)"></div>

<footer>Dernière mise à jour: {{stamp .UpdatedAt}}</footer>
</div>
</body>
</html>
{{end}}`

const fragmentTemplates = `
{{define "themeToggle"}}<button id="theme-toggle" title="Mode sombre" data-on:click="@post('/sse/theme')">{{if .Dark}}☀️{{else}}🌙{{end}}</button>{{end}}

{{define "kpis"}}<div id="kpi-cards" class="kpis">
  <div class="card"><span>CA Total</span><h4>{{money .TotalRevenue}}</h4></div>
  <div class="card"><span>Ventes</span><h4>{{number .TotalUnits}}</h4></div>
  <div class="card"><span>Clients</span><h4>{{number .UniqueClients}}</h4></div>
  <div class="card"><span>Panier Moyen</span><h4>{{money .AverageBasket}}</h4></div>
</div>{{end}}

{{define "filters"}}<div id="filters" class="filters" data-on:change="$tablePage = 1; @get('/sse/refresh')">
  <label>Période:
    <input type="date" min="{{.MinDate}}" max="{{.MaxDate}}" data-bind:start>
    <input type="date" min="{{.MinDate}}" max="{{.MaxDate}}" data-bind:end>
  </label>
  <fieldset>
    <legend>Catégories:</legend>
    {{range .Categories}}<label><input type="checkbox" value="{{.}}" data-bind:categories> {{.}}</label><br>{{end}}
  </fieldset>
  <fieldset>
    <legend>Villes:</legend>
    {{range .Cities}}<label><input type="checkbox" value="{{.}}" data-bind:cities> {{.}}</label><br>{{end}}
  </fieldset>
  <button data-on:click="$start = ''; $end = ''; $categories = []; $cities = []; $tablePage = 1; @get('/sse/refresh')">Réinitialiser</button>
</div>{{end}}

{{define "salesTable"}}<div id="sales-table">
  <table>
    <thead><tr>{{range .Columns}}<th data-on:click="@get('/sse/table?sort={{.}}')">{{.}}{{sortMark $ .}}</th>{{end}}</tr></thead>
    <tbody>
    {{range .Rows}}<tr>{{range .Values}}<td>{{.}}</td>{{end}}</tr>
    {{else}}<tr><td colspan="{{len .Columns}}">Aucune vente</td></tr>
    {{end}}
    </tbody>
  </table>
  <div class="pager">
    <button {{if not .HasPrev}}disabled{{end}} data-on:click="@get('/sse/table?page={{.Prev}}')">«</button>
    <span>Page {{.Page}} / {{.Pages}} ({{.Total}} ventes)</span>
    <button {{if not .HasNext}}disabled{{end}} data-on:click="@get('/sse/table?page={{.Next}}')">»</button>
  </div>
</div>{{end}}

{{define "productTable"}}<div id="product-table">
  <table>
    <thead><tr><th>ID</th><th>Nom</th><th>Catégorie</th><th>Prix unitaire</th><th>Actions</th></tr></thead>
    <tbody>
    {{range .}}<tr class="editable" data-on:click="@get('/sse/products/{{.ID}}/edit')">
      <td>{{.ID}}</td><td>{{.Name}}</td><td>{{.Category}}</td><td>{{money .UnitPrice}}</td>
      <td>
        <button data-on:click__stop="confirm('Supprimer ce produit ?') && @delete('/sse/products/{{.ID}}')">Supprimer</button>
      </td>
    </tr>{{end}}
    </tbody>
  </table>
</div>{{end}}

{{define "clientTable"}}<div id="client-table">
  <table>
    <thead><tr><th>ID</th><th>Nom</th><th>Ville</th><th>Email</th><th>Actions</th></tr></thead>
    <tbody>
    {{range .}}<tr class="editable" data-on:click="@get('/sse/clients/{{.ID}}/edit')">
      <td>{{.ID}}</td><td>{{.Name}}</td><td>{{.City}}</td><td>{{.Email}}</td>
      <td>
        <button data-on:click__stop="confirm('Supprimer ce client ?') && @delete('/sse/clients/{{.ID}}')">Supprimer</button>
      </td>
    </tr>{{end}}
    </tbody>
  </table>
</div>{{end}}

{{define "message"}}<div id="{{.ID}}" class="message{{if .Kind}} message-{{.Kind}}{{end}}">{{.Text}}</div>{{end}}
`
